package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/cal/internal/client/models"
	"github.com/dmitrijs2005/cal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/cal/internal/common"
	"github.com/dmitrijs2005/cal/internal/cryptox"
	"github.com/dmitrijs2005/cal/internal/logging"
	"github.com/dmitrijs2005/cal/internal/rowstore"
	"github.com/dmitrijs2005/cal/internal/timex"
	"github.com/google/uuid"
)

const (
	masterPasswordKey     = "master_password_hash"
	defaultMasterPassword = "admin@1"
	adminEmailDomain      = "cal.admin"
	auditLogLimit         = 100

	ActionAdminRegistered = "Admin Registered"
)

// AuthService manages who is acting on this device.
//
// Read paths never return remote errors: missing tables, missing rows and
// unreachable servers all read as "nothing there". RegisterPersonalAdmin is
// the only remote call whose failure is returned to the caller.
type AuthService interface {
	DeviceID(ctx context.Context) string
	InitMasterPassword(ctx context.Context)
	VerifyMasterPassword(ctx context.Context, password string) bool
	RegisterPersonalAdmin(ctx context.Context, firstName, lastName, password string) (models.Admin, error)
	VerifyPersonalAdmin(ctx context.Context, adminID, password string) (models.Admin, bool)
	GetAllAdmins(ctx context.Context) []models.Admin
	NewGuest(firstName, lastName string) (models.Guest, error)
	CreateSession(ctx context.Context, id models.Identity) (models.SyncResult, error)
	GetCurrentSession(ctx context.Context) (models.Identity, bool)
	Logout(ctx context.Context) error
	SyncUser(ctx context.Context, id models.Identity) error
	GetGlobalUserCount(ctx context.Context) int64
	LogAction(ctx context.Context, admin models.Identity, action, details string) error
	GetAuditLogs(ctx context.Context) []models.AuditEntry
}

type authService struct {
	store  rowstore.Store
	local  metadata.Repository
	logger logging.Logger
	now    func() time.Time
}

// NewAuthService returns an AuthService over the remote store and the
// local key-value store.
func NewAuthService(store rowstore.Store, local metadata.Repository, logger logging.Logger) AuthService {
	return &authService{store: store, local: local, logger: logger.With("service", "auth"), now: time.Now}
}

// DeviceID returns the device identifier, creating and persisting one on
// first use. A failing local store yields a fresh, unpersisted id.
func (a *authService) DeviceID(ctx context.Context) string {
	v, err := a.local.Get(ctx, KeyDeviceID)
	if err == nil && len(v) > 0 {
		return string(v)
	}

	id := cryptox.NewDeviceID()
	if err := a.local.Set(ctx, KeyDeviceID, []byte(id)); err != nil {
		a.logger.Warn(ctx, "device id not persisted", "err", err)
	}
	return id
}

func (a *authService) masterHash(ctx context.Context) (rowstore.Row, error) {
	return rowstore.First(ctx, a.store, common.TableAppConfig, rowstore.Eq("key", masterPasswordKey))
}

// InitMasterPassword stores the hash of the default master password unless
// a hash is already configured. It never fails: an unprovisioned config
// table means no master password, other errors are logged.
func (a *authService) InitMasterPassword(ctx context.Context) {
	row, err := a.masterHash(ctx)
	if err != nil {
		if errors.Is(err, rowstore.ErrTableMissing) {
			a.logger.Debug(ctx, "config table missing, master password disabled")
			return
		}
		a.logger.Warn(ctx, "master password lookup failed", "err", err)
		return
	}
	if row != nil {
		return
	}

	_, err = a.store.Insert(ctx, common.TableAppConfig, rowstore.Row{
		"key":   masterPasswordKey,
		"value": cryptox.HashPassword(defaultMasterPassword),
	})
	if err != nil {
		a.logger.Warn(ctx, "master password bootstrap failed", "err", err)
	}
}

// VerifyMasterPassword reports whether password hashes to the configured
// master password hash. Any failure reads as false.
func (a *authService) VerifyMasterPassword(ctx context.Context, password string) bool {
	a.InitMasterPassword(ctx)

	row, err := a.masterHash(ctx)
	if err != nil || row == nil {
		return false
	}
	return row.String("value") == cryptox.HashPassword(password)
}

// RegisterPersonalAdmin creates an administrator and records the
// registration in the audit trail. Insert failures are returned.
func (a *authService) RegisterPersonalAdmin(ctx context.Context, firstName, lastName, password string) (models.Admin, error) {
	firstName, lastName = strings.TrimSpace(firstName), strings.TrimSpace(lastName)
	if firstName == "" {
		return models.Admin{}, fmt.Errorf("%w: first name is required", common.ErrorValidation)
	}
	if password == "" {
		return models.Admin{}, fmt.Errorf("%w: password is required", common.ErrorValidation)
	}

	username := strings.ToLower(firstName)
	stored, err := a.store.Insert(ctx, common.TableAdmins, rowstore.Row{
		"role":            string(models.RoleAdmin),
		"name":            strings.TrimSpace(firstName + " " + lastName),
		"username":        username,
		"email":           username + "@" + adminEmailDomain,
		"hashed_password": cryptox.HashPassword(password),
		"created_at":      timex.FormatTimestamp(a.now()),
	})
	if err != nil {
		return models.Admin{}, fmt.Errorf("register admin: %w", err)
	}

	admin := models.AdminFromRow(stored)
	_ = a.LogAction(ctx, admin, ActionAdminRegistered, "Account created for "+admin.Name)
	return admin, nil
}

// VerifyPersonalAdmin returns the administrator when password matches.
// Unknown ids, store errors and wrong passwords are indistinguishable.
func (a *authService) VerifyPersonalAdmin(ctx context.Context, adminID, password string) (models.Admin, bool) {
	row, err := rowstore.First(ctx, a.store, common.TableAdmins, rowstore.Eq("id", adminID))
	if err != nil {
		a.logger.Debug(ctx, "admin lookup failed", "err", err)
		return models.Admin{}, false
	}
	if row == nil {
		return models.Admin{}, false
	}

	admin := models.AdminFromRow(row)
	if admin.HashedPassword != cryptox.HashPassword(password) {
		return models.Admin{}, false
	}
	return admin, true
}

// GetAllAdmins lists administrators by name.
func (a *authService) GetAllAdmins(ctx context.Context) []models.Admin {
	rows, err := a.store.Select(ctx, common.TableAdmins, rowstore.Query{OrderBy: "name"})
	if err != nil {
		a.logger.Warn(ctx, "admin listing failed", "err", err)
		return []models.Admin{}
	}

	admins := make([]models.Admin, 0, len(rows))
	for _, r := range rows {
		admins = append(admins, models.AdminFromRow(r))
	}
	return admins
}

// NewGuest builds a guest identity from a first and last name.
func (a *authService) NewGuest(firstName, lastName string) (models.Guest, error) {
	firstName, lastName = strings.TrimSpace(firstName), strings.TrimSpace(lastName)
	if firstName == "" {
		return models.Guest{}, fmt.Errorf("%w: first name is required", common.ErrorValidation)
	}
	return models.Guest{Profile: models.Profile{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(firstName + " " + lastName),
		Username: strings.ToLower(firstName),
	}}, nil
}

// CreateSession makes id the active identity on this device. Guests are also
// remembered across logouts and announced to the users table.
func (a *authService) CreateSession(ctx context.Context, id models.Identity) (models.SyncResult, error) {
	data, err := models.MarshalIdentity(id)
	if err != nil {
		return models.Failed, err
	}

	token := cryptox.EncodeSessionToken(id.Info().ID, string(id.Role()), a.now())
	values := map[string][]byte{
		KeySessionToken: []byte(token),
		KeyActiveUser:   data,
	}
	if id.Role() == models.RoleGuest {
		values[KeySavedGuest] = data
	}
	if err := a.local.SetMany(ctx, values); err != nil {
		return models.Failed, fmt.Errorf("save session: %w", err)
	}

	if err := a.SyncUser(ctx, id); err != nil {
		return models.AppliedLocalOnly, nil
	}
	return models.Applied, nil
}

// GetCurrentSession returns the active identity if the stored token matches
// it, else the remembered guest. Corrupt local data reads as no session.
func (a *authService) GetCurrentSession(ctx context.Context) (models.Identity, bool) {
	token, _ := a.local.Get(ctx, KeySessionToken)
	active, _ := a.local.Get(ctx, KeyActiveUser)

	if len(token) > 0 && len(active) > 0 {
		id, err := models.UnmarshalIdentity(active)
		if err == nil {
			claims, err := cryptox.DecodeSessionToken(string(token))
			if err == nil && claims.ID == id.Info().ID && claims.Role == string(id.Role()) {
				return id, true
			}
		}
		a.logger.Debug(ctx, "stored session rejected")
	}

	saved, _ := a.local.Get(ctx, KeySavedGuest)
	if len(saved) > 0 {
		if id, err := models.UnmarshalIdentity(saved); err == nil {
			return id, true
		}
	}
	return nil, false
}

// Logout clears the active session. The remembered guest stays.
func (a *authService) Logout(ctx context.Context) error {
	if err := a.local.Delete(ctx, KeySessionToken); err != nil {
		return err
	}
	return a.local.Delete(ctx, KeyActiveUser)
}

// SyncUser upserts a presence row for guests. Administrators are skipped.
// Failures are logged and returned for the caller to ignore.
func (a *authService) SyncUser(ctx context.Context, id models.Identity) error {
	if id.Role() != models.RoleGuest {
		return nil
	}

	p := id.Info()
	err := a.store.Upsert(ctx, common.TableUsers, rowstore.Row{
		"id":        p.ID,
		"name":      p.Name,
		"device_id": a.DeviceID(ctx),
		"last_seen": timex.FormatTimestamp(a.now()),
	}, "id")
	if err != nil {
		a.logger.Warn(ctx, "presence sync failed", "table", common.TableUsers, "err", err)
	}
	return err
}

// GetGlobalUserCount counts known users, 0 when unknown.
func (a *authService) GetGlobalUserCount(ctx context.Context) int64 {
	n, err := a.store.Count(ctx, common.TableUsers)
	if err != nil {
		if !errors.Is(err, rowstore.ErrTableMissing) {
			a.logger.Warn(ctx, "user count failed", "err", err)
		}
		return 0
	}
	return n
}

// LogAction appends an audit entry. Failures are logged and returned for
// the caller to ignore.
func (a *authService) LogAction(ctx context.Context, admin models.Identity, action, details string) error {
	p := admin.Info()
	_, err := a.store.Insert(ctx, common.TableAuditLogs, rowstore.Row{
		"admin_id":   p.ID,
		"admin_name": p.Name,
		"action":     action,
		"details":    details,
		"timestamp":  timex.FormatTimestamp(a.now()),
	})
	if err != nil {
		a.logger.Warn(ctx, "audit write failed", "table", common.TableAuditLogs, "action", action, "err", err)
	}
	return err
}

// GetAuditLogs returns the most recent audit entries, newest first.
func (a *authService) GetAuditLogs(ctx context.Context) []models.AuditEntry {
	rows, err := a.store.Select(ctx, common.TableAuditLogs, rowstore.Query{
		OrderBy: "timestamp",
		Desc:    true,
		Limit:   auditLogLimit,
	})
	if err != nil {
		a.logger.Warn(ctx, "audit listing failed", "err", err)
		return []models.AuditEntry{}
	}

	out := make([]models.AuditEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.AuditEntryFromRow(r))
	}
	return out
}
