package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"timesheet-api/internal/domain"
	"timesheet-api/internal/ports"
	"timesheet-api/internal/rules"
)

const verificationTokenLen = 64

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type Credentials struct {
	Email    string
	Password string
}

// CustomerUpdate is a partial update. EmailSet is true when the request
// carried an email field at all, whatever its value.
type CustomerUpdate struct {
	Name     *string
	EmailSet bool
}

// LoginUser is the user object embedded in a login response.
type LoginUser struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	EmailVerified bool     `json:"emailVerified"`
	Roles         []string `json:"roles"`
}

type LoginResult struct {
	AccessToken string    `json:"accessToken"`
	TTL         int64     `json:"ttl"`
	Created     time.Time `json:"created"`
	User        LoginUser `json:"user"`
}

// Customers runs registration, verification, login and account upkeep.
type Customers struct {
	Log        *logrus.Logger
	Store      ports.CustomerStore
	Roles      ports.RoleStore
	RoleCache  ports.RoleCache // optional
	Resolver   ports.RoleResolver
	TimeSheets ports.TimeSheetStore
	Sessions   *Sessions
	Mailer     ports.Mailer
	Policy     rules.EmailPolicy
	ClientURL  string
	PublicURL  string
	MailFrom   string
	ResetTTL   time.Duration
	Now        func() time.Time
}

func (uc *Customers) now() time.Time {
	if uc.Now != nil {
		return uc.Now().UTC()
	}
	return time.Now().UTC()
}

// Register creates an unverified customer and mails a verification link.
// Mail delivery failures are logged and do not fail the registration.
func (uc *Customers) Register(ctx context.Context, in RegisterInput) (domain.Customer, error) {
	email := uc.Policy.Normalize(in.Email)
	if err := uc.Policy.Check(email); err != nil {
		return domain.Customer{}, err
	}
	name, err := requireName(in.Name)
	if err != nil {
		return domain.Customer{}, err
	}
	if in.Password == "" {
		return domain.Customer{}, domain.Validation("INVALID_PASSWORD", "password can't be blank")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("hash password: %w", err)
	}
	token, err := gonanoid.New(verificationTokenLen)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("verification token: %w", err)
	}

	c, err := uc.Store.CreateCustomer(ctx, domain.Customer{
		Name:              name,
		Email:             email,
		PasswordHash:      string(hash),
		VerificationToken: &token,
	})
	if err != nil {
		return domain.Customer{}, err
	}
	log := uc.Log.WithFields(logrus.Fields{"user_id": c.ID, "email": c.Email})
	log.Info("customer registered")

	if err := uc.sendVerification(ctx, c, token); err != nil {
		log.WithError(err).Error("verification email not sent")
	}
	return c, nil
}

// VerificationURL is the confirm link mailed after registration.
func (uc *Customers) VerificationURL(uid int64, token string) string {
	q := url.Values{}
	q.Set("uid", fmt.Sprint(uid))
	q.Set("redirect", uc.ClientURL+"/")
	q.Set("token", token)
	return uc.PublicURL + "/api/customers/confirm?" + q.Encode()
}

func (uc *Customers) sendVerification(ctx context.Context, c domain.Customer, token string) error {
	body, err := render(verifyTmpl, mailData{Name: c.Name, URL: uc.VerificationURL(c.ID, token)})
	if err != nil {
		return err
	}
	return uc.Mailer.Send(ctx, ports.Message{
		To:      c.Email,
		From:    uc.MailFrom,
		Subject: "Thanks for registering.",
		HTML:    body,
	})
}

// Confirm verifies the email of uid when token matches its pending token.
// Tokens are single use.
func (uc *Customers) Confirm(ctx context.Context, uid int64, token string) error {
	c, err := uc.Store.GetCustomer(ctx, uid)
	if err != nil {
		if de, ok := domain.AsError(err); ok && de.Kind == domain.KindNotFound {
			return domain.ErrUserNotFound
		}
		return err
	}
	if c.VerificationToken == nil || token == "" ||
		subtle.ConstantTimeCompare([]byte(*c.VerificationToken), []byte(token)) != 1 {
		return domain.ErrInvalidToken
	}
	if err := uc.Store.MarkVerified(ctx, uid, token); err != nil {
		return err
	}
	uc.Log.WithField("user_id", uid).Info("customer email verified")
	return nil
}

// ResendVerification replaces the pending verification token of email and
// mails a fresh link. The old link stops working. Unknown and already
// verified emails succeed silently.
func (uc *Customers) ResendVerification(ctx context.Context, email string) error {
	email = uc.Policy.Normalize(email)
	c, err := uc.Store.GetCustomerByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if c.EmailVerified {
		return nil
	}
	token, err := gonanoid.New(verificationTokenLen)
	if err != nil {
		return fmt.Errorf("verification token: %w", err)
	}
	if err := uc.Store.SetVerificationToken(ctx, c.ID, &token); err != nil {
		return err
	}
	log := uc.Log.WithField("user_id", c.ID)
	if err := uc.sendVerification(ctx, c, token); err != nil {
		log.WithError(err).Error("verification email not sent")
		return nil
	}
	log.Info("verification email resent")
	return nil
}

// Get returns a customer to itself or to a privileged principal.
func (uc *Customers) Get(ctx context.Context, p domain.Principal, id int64) (domain.Customer, error) {
	if p.UserID != id && !p.Privileged() {
		return domain.Customer{}, domain.ErrAccessDenied
	}
	return uc.Store.GetCustomer(ctx, id)
}

// Update changes the customer's name. Any attempt to change email fails.
func (uc *Customers) Update(ctx context.Context, p domain.Principal, id int64, in CustomerUpdate) (domain.Customer, error) {
	if in.EmailSet {
		return domain.Customer{}, domain.ErrEmailChangeNotAllowed
	}
	if p.UserID != id && !p.Privileged() {
		return domain.Customer{}, domain.ErrAccessDenied
	}
	if in.Name != nil {
		name, err := requireName(*in.Name)
		if err != nil {
			return domain.Customer{}, err
		}
		if err := uc.Store.UpdateCustomerName(ctx, id, name); err != nil {
			return domain.Customer{}, err
		}
	}
	return uc.Store.GetCustomer(ctx, id)
}

// Login checks credentials, requires a verified email and opens a session.
func (uc *Customers) Login(ctx context.Context, in Credentials) (LoginResult, error) {
	email := uc.Policy.Normalize(in.Email)
	c, err := uc.Store.GetCustomerByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return LoginResult{}, domain.ErrLoginFailed
	}
	if err != nil {
		return LoginResult{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(in.Password)) != nil {
		return LoginResult{}, domain.ErrLoginFailed
	}
	if !c.EmailVerified {
		return LoginResult{}, domain.ErrEmailNotVerified
	}

	raw, sess, err := uc.Sessions.Create(ctx, c.ID)
	if err != nil {
		return LoginResult{}, err
	}
	roles, err := uc.Resolver.RoleNames(ctx, c.ID)
	if err != nil {
		return LoginResult{}, domain.DependencyFailure("ROLE_LOOKUP_FAILED", err)
	}
	uc.Log.WithField("user_id", c.ID).Info("customer logged in")
	return LoginResult{
		AccessToken: raw,
		TTL:         int64(sess.TTL / time.Second),
		Created:     sess.CreatedAt,
		User: LoginUser{
			ID:            c.ID,
			Name:          c.Name,
			Email:         c.Email,
			EmailVerified: c.EmailVerified,
			Roles:         roles,
		},
	}, nil
}

func (uc *Customers) Logout(ctx context.Context, token string) error {
	return uc.Sessions.Revoke(ctx, token)
}

// AddRole grants roleName to userID, creating the role if needed. Granting
// a role twice is a no-op.
func (uc *Customers) AddRole(ctx context.Context, userID int64, roleName string) error {
	roleName = strings.TrimSpace(roleName)
	if roleName == "" {
		return domain.Validation("INVALID_ROLE", "role can't be blank")
	}
	if _, err := uc.Store.GetCustomer(ctx, userID); err != nil {
		if de, ok := domain.AsError(err); ok && de.Kind == domain.KindNotFound {
			notFound := *domain.ErrUserNotFound
			notFound.Status = http.StatusBadRequest
			return &notFound
		}
		return err
	}
	roleID, err := uc.Roles.UpsertRole(ctx, roleName)
	if err != nil {
		return err
	}
	if err := uc.Roles.UpsertRoleMapping(ctx, domain.PrincipalTypeUser, userID, roleID); err != nil {
		return err
	}
	log := uc.Log.WithFields(logrus.Fields{"user_id": userID, "role": roleName})
	if uc.RoleCache != nil {
		if err := uc.RoleCache.Invalidate(ctx, userID); err != nil {
			log.WithError(err).Warn("role cache not invalidated")
		}
	}
	log.Info("role granted")
	return nil
}

// RequestPasswordReset mails a reset link when email belongs to a customer.
// Unknown emails succeed silently.
func (uc *Customers) RequestPasswordReset(ctx context.Context, email string) error {
	email = uc.Policy.Normalize(email)
	c, err := uc.Store.GetCustomerByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		uc.Log.WithField("email", email).Info("password reset for unknown email ignored")
		return nil
	}
	if err != nil {
		return err
	}
	token, err := uc.Sessions.IssueReset(ctx, c.ID, uc.ResetTTL)
	if err != nil {
		return err
	}
	body, err := render(resetTmpl, mailData{Name: c.Name, URL: uc.ClientURL + "/resetpassword/" + token})
	if err == nil {
		err = uc.Mailer.Send(ctx, ports.Message{To: c.Email, From: uc.MailFrom, Subject: "Password reset", HTML: body})
	}
	if err != nil {
		uc.Log.WithError(err).WithField("user_id", c.ID).Error("password reset email not sent")
	}
	return nil
}

// ResetPassword stores a new password for the holder of a reset token.
func (uc *Customers) ResetPassword(ctx context.Context, token, password string) error {
	if password == "" {
		return domain.Validation("INVALID_PASSWORD", "password can't be blank")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	userID, err := uc.Sessions.ConsumeReset(ctx, token)
	if err != nil {
		return err
	}
	if err := uc.Store.SetPassword(ctx, userID, string(hash)); err != nil {
		return err
	}
	uc.Log.WithField("user_id", userID).Info("password reset")
	return nil
}

// Stats summarises the activity of userID. Non-privileged callers always
// get their own numbers.
func (uc *Customers) Stats(ctx context.Context, p domain.Principal, userID int64) (domain.UserStats, error) {
	f := rules.ScopeFilter(domain.Filter{UserID: &userID}, p)
	return uc.TimeSheets.UserStats(ctx, *f.UserID, uc.now())
}
