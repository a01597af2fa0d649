package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/cal/internal/client/models"
	"github.com/dmitrijs2005/cal/internal/common"
)

// startSession persists id as the active session. Reminders are not pulled
// here: a pull replaces local state, so it waits for an explicit "sync".
func (a *App) startSession(ctx context.Context, id models.Identity) error {
	res, err := a.auth.CreateSession(ctx, id)
	if err != nil {
		return err
	}
	a.setIdentity(id)

	p := id.Info()
	fmt.Fprintf(a.out, "Signed in as %s (%s).\n", p.Name, id.Role())
	if res == models.AppliedLocalOnly {
		fmt.Fprintln(a.out, "Server unreachable: profile saved on this device only.")
	}

	return nil
}

func (a *App) cmdGuest(ctx context.Context, _ []string) error {
	first, err := GetSimpleText(a.reader, "First name", a.out)
	if err != nil {
		return err
	}
	last, err := GetSimpleText(a.reader, "Last name", a.out)
	if err != nil {
		return err
	}

	g, err := a.auth.NewGuest(first, last)
	if err != nil {
		return err
	}
	return a.startSession(ctx, g)
}

func (a *App) cmdAdmin(ctx context.Context, _ []string) error {
	master, err := GetPassword(a.reader, "Master password", a.out)
	if err != nil {
		return err
	}
	if !a.auth.VerifyMasterPassword(ctx, master) {
		return fmt.Errorf("%w: wrong master password", common.ErrorUnauthorized)
	}

	first, err := GetSimpleText(a.reader, "First name", a.out)
	if err != nil {
		return err
	}
	last, err := GetSimpleText(a.reader, "Last name", a.out)
	if err != nil {
		return err
	}
	pw, err := GetPassword(a.reader, "Personal password", a.out)
	if err != nil {
		return err
	}
	again, err := GetPassword(a.reader, "Repeat password", a.out)
	if err != nil {
		return err
	}
	if pw != again {
		return fmt.Errorf("%w: passwords do not match", common.ErrorValidation)
	}

	admin, err := a.auth.RegisterPersonalAdmin(ctx, first, last, pw)
	if err != nil {
		return err
	}
	return a.startSession(ctx, admin)
}

func (a *App) cmdLogin(ctx context.Context, _ []string) error {
	admins := a.auth.GetAllAdmins(ctx)
	if len(admins) == 0 {
		return errors.New("no administrators found; register one with \"admin\"")
	}
	for i, ad := range admins {
		fmt.Fprintf(a.out, "%d. %s\n", i+1, ad.Name)
	}

	choice, err := GetSimpleText(a.reader, "Administrator number", a.out)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(admins) {
		return fmt.Errorf("%w: pick a number from 1 to %d", common.ErrorValidation, len(admins))
	}

	pw, err := GetPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	admin, ok := a.auth.VerifyPersonalAdmin(ctx, admins[n-1].ID, pw)
	if !ok {
		return fmt.Errorf("%w: wrong password", common.ErrorUnauthorized)
	}
	return a.startSession(ctx, admin)
}

func (a *App) cmdAdmins(ctx context.Context, _ []string) error {
	admins := a.auth.GetAllAdmins(ctx)
	if len(admins) == 0 {
		fmt.Fprintln(a.out, "No administrators.")
		return nil
	}
	for _, ad := range admins {
		fmt.Fprintf(a.out, "%s <%s> since %s\n", ad.Name, ad.Email, ad.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

func (a *App) cmdWhoami(ctx context.Context, _ []string) error {
	id := a.currentIdentity()
	if id == nil {
		fmt.Fprintf(a.out, "Not signed in (%s).\n", a.Mode())
		return nil
	}
	p := id.Info()
	fmt.Fprintf(a.out, "Name:   %s\nRole:   %s\n", p.Name, id.Role())
	if p.Username != "" {
		fmt.Fprintf(a.out, "User:   @%s\n", p.Username)
	}
	if p.Email != "" {
		fmt.Fprintf(a.out, "Email:  %s\n", p.Email)
	}
	fmt.Fprintf(a.out, "Device: %s\nMode:   %s\n", a.auth.DeviceID(ctx), a.Mode())
	return nil
}

func (a *App) cmdLogout(ctx context.Context, _ []string) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.setIdentity(nil)
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

func (a *App) cmdAudit(ctx context.Context, _ []string) error {
	id, err := a.requireIdentity()
	if err != nil {
		return err
	}
	if id.Role() != models.RoleAdmin {
		return fmt.Errorf("%w: administrator required", common.ErrorForbidden)
	}

	logs := a.auth.GetAuditLogs(ctx)
	if len(logs) == 0 {
		fmt.Fprintln(a.out, "Audit log is empty.")
		return nil
	}
	for _, e := range logs {
		fmt.Fprintf(a.out, "%s  %-16s %-18s %s\n", e.Timestamp.Local().Format("2006-01-02 15:04"), e.AdminName, e.Action, e.Details)
	}
	return nil
}

func (a *App) cmdUsers(ctx context.Context, _ []string) error {
	fmt.Fprintf(a.out, "Registered guests: %d\n", a.auth.GetGlobalUserCount(ctx))
	return nil
}
