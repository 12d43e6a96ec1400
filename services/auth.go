package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/smartspace/smartspace-be/middleware"
	"github.com/smartspace/smartspace-be/models"
)

const otpTTL = 15 * time.Minute

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidCode        = errors.New("invalid or expired verification code")
	ErrAlreadyVerified    = errors.New("account already verified")
)

type AuthService struct {
	db        *gorm.DB
	notifier  Notifier
	jwtSecret []byte
	logger    *zap.Logger
	now       func() time.Time
}

func NewAuthService(db *gorm.DB, notifier Notifier, jwtSecret string, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		db:        db,
		notifier:  notifier,
		jwtSecret: []byte(jwtSecret),
		logger:    logger,
		now:       time.Now,
	}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func (s *AuthService) CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	claims := middleware.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(s.now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(s.now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// Register creates an unverified account and sends a one-time passcode to
// the user's email. The account cannot log in until the code is confirmed.
func (s *AuthService) Register(ctx context.Context, email, password, firstName, lastName string) (*models.User, error) {
	hashedPassword, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:     email,
		Password:  hashedPassword,
		FirstName: firstName,
		LastName:  lastName,
		Role:      models.RoleUser,
		IsActive:  true,
	}

	code := generateOTP()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		otp := models.OneTimePassword{
			UserID:    user.ID,
			Code:      code,
			ExpiresAt: s.now().Add(otpTTL),
		}
		return tx.Create(&otp).Error
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.VerificationCode(ctx, &user, code)
	}
	return &user, nil
}

// VerifyEmail confirms the passcode and activates the account.
func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("email = ?", email).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("user %s: %w", email, ErrNotFound)
			}
			return err
		}
		if user.IsVerified {
			return ErrAlreadyVerified
		}

		var otp models.OneTimePassword
		err := tx.Where("user_id = ? AND code = ?", user.ID, code).
			Order("created_at DESC").
			First(&otp).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidCode
			}
			return err
		}
		if otp.ExpiresAt.Before(s.now()) {
			return ErrInvalidCode
		}

		if err := tx.Model(&user).Update("is_verified", true).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", user.ID).Delete(&models.OneTimePassword{}).Error
	})
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ? AND is_active = ?", email, true).
		First(&user).Error
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if !s.CheckPassword(password, user.Password) {
		return nil, "", ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, "", errors.New("account not verified")
	}

	token, err := s.GenerateToken(&user)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// CreateUser creates an already-verified account. Used by admin flows and
// the seed migration path.
func (s *AuthService) CreateUser(ctx context.Context, email, password, firstName, lastName string, role models.UserRole) (*models.User, error) {
	hashedPassword, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:      email,
		Password:   hashedPassword,
		FirstName:  firstName,
		LastName:   lastName,
		Role:       role,
		IsVerified: true,
		IsActive:   true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUser loads a user by id.
func (s *AuthService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// generateOTP builds a 6-digit numeric passcode.
func generateOTP() string {
	code := make([]byte, 6)
	for i := range code {
		code[i] = byte('1' + rand.Intn(9))
	}
	return string(code)
}
