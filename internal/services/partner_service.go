package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/swiftroute/partner-backend/internal/domain"
	"github.com/swiftroute/partner-backend/internal/repo"
)

// PartnerService handles partner registration, login, OTP login, and profile
// management.
type PartnerService struct {
	DB     *gorm.DB
	Tokens TokenIssuer
	OTP    *OTPStore
	SMS    SMSSender
	Log    zerolog.Logger
}

// RegisterInput carries the fields accepted at sign-up.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// Register creates a new partner account and returns it with a session
// token. Returns ErrEmailTaken when the email is already registered.
func (s *PartnerService) Register(ctx context.Context, in RegisterInput) (*domain.DeliveryPartner, string, error) {
	if _, err := repo.GetPartnerByEmail(ctx, s.DB, in.Email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, "", fmt.Errorf("register: lookup email: %w", err)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("register: hash password: %w", err)
	}

	p := &domain.DeliveryPartner{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
	}
	if err := repo.CreatePartner(ctx, s.DB, p); err != nil {
		// The unique index can still fire under a concurrent register with
		// the same email; report it the same way as the precheck.
		return nil, "", ErrEmailTaken
	}

	token, err := s.Tokens.Issue(p.ID)
	if err != nil {
		return nil, "", fmt.Errorf("register: issue token: %w", err)
	}

	s.Log.Info().Str("partner_id", p.ID).Msg("partner registered")
	return p, token, nil
}

// Login authenticates by email and password and returns the partner with a
// fresh session token. Unknown email and wrong password both map to
// ErrInvalidCredentials.
func (s *PartnerService) Login(ctx context.Context, email, password string) (*domain.DeliveryPartner, string, error) {
	p, err := repo.GetPartnerByEmail(ctx, s.DB, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("login: lookup email: %w", err)
	}
	if !VerifyPassword(password, p.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.Tokens.Issue(p.ID)
	if err != nil {
		return nil, "", fmt.Errorf("login: issue token: %w", err)
	}
	return p, token, nil
}

// RequestOTP generates a one-time code for the partner registered under
// phone and hands it to the SMS sender. Returns ErrPartnerNotFound when no
// account uses that phone number.
func (s *PartnerService) RequestOTP(ctx context.Context, phone string) error {
	if _, err := repo.GetPartnerByPhone(ctx, s.DB, phone); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrPartnerNotFound
		}
		return fmt.Errorf("request otp: lookup phone: %w", err)
	}

	code, err := s.OTP.Generate(phone)
	if err != nil {
		return fmt.Errorf("request otp: generate code: %w", err)
	}
	msg := fmt.Sprintf("Your SwiftRoute login code is %s. It expires in 5 minutes.", code)
	if err := s.SMS.Send(ctx, phone, msg); err != nil {
		return fmt.Errorf("request otp: send sms: %w", err)
	}
	return nil
}

// VerifyOTP checks the one-time code for phone and, on success, returns the
// partner with a fresh session token.
func (s *PartnerService) VerifyOTP(ctx context.Context, phone, code string) (*domain.DeliveryPartner, string, error) {
	p, err := repo.GetPartnerByPhone(ctx, s.DB, phone)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, "", ErrPartnerNotFound
		}
		return nil, "", fmt.Errorf("verify otp: lookup phone: %w", err)
	}
	if err := s.OTP.Verify(phone, code); err != nil {
		return nil, "", err
	}

	token, err := s.Tokens.Issue(p.ID)
	if err != nil {
		return nil, "", fmt.Errorf("verify otp: issue token: %w", err)
	}
	return p, token, nil
}

// Profile returns the partner's account record.
func (s *PartnerService) Profile(ctx context.Context, partnerID string) (*domain.DeliveryPartner, error) {
	p, err := repo.GetPartner(ctx, s.DB, partnerID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPartnerNotFound
		}
		return nil, fmt.Errorf("profile: %w", err)
	}
	return p, nil
}

// ProfileUpdate carries the mutable profile fields; nil means unchanged.
type ProfileUpdate struct {
	Name  *string
	Phone *string
}

// UpdateProfile applies the non-nil fields of upd and returns the refreshed
// record. Identity, credentials, and aggregate counters are not reachable
// through this path.
func (s *PartnerService) UpdateProfile(ctx context.Context, partnerID string, upd ProfileUpdate) (*domain.DeliveryPartner, error) {
	updates := map[string]any{}
	if upd.Name != nil {
		updates["name"] = *upd.Name
	}
	if upd.Phone != nil {
		updates["phone"] = *upd.Phone
	}
	if len(updates) > 0 {
		updates["updated_at"] = time.Now().UTC()
		if err := repo.UpdatePartnerProfile(ctx, s.DB, partnerID, updates); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrPartnerNotFound
			}
			return nil, fmt.Errorf("update profile: %w", err)
		}
	}
	return s.Profile(ctx, partnerID)
}

// SetOnline toggles the partner's presence flag and returns the refreshed
// record.
func (s *PartnerService) SetOnline(ctx context.Context, partnerID string, online bool) (*domain.DeliveryPartner, error) {
	if err := repo.SetPartnerOnline(ctx, s.DB, partnerID, online); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPartnerNotFound
		}
		return nil, fmt.Errorf("set online: %w", err)
	}
	s.Log.Debug().Str("partner_id", partnerID).Bool("online", online).Msg("presence updated")
	return s.Profile(ctx, partnerID)
}
