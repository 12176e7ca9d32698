package services

import (
	"context"
	"errors"
	"famline/models"
	"famline/repositories"
	"famline/utils"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

type defaultGroupSeeder interface {
	SeedDefaultGroups(ctx context.Context, ownerID string) error
}

type AuthService struct {
	userRepo        *repositories.UserRepository
	jwtService      *utils.JWTService
	groupSeeder     defaultGroupSeeder
	passwordService *utils.PasswordService
	validator       *utils.ValidationService
}

func NewAuthService(userRepo *repositories.UserRepository, jwtService *utils.JWTService, groupSeeder defaultGroupSeeder) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		jwtService:      jwtService,
		groupSeeder:     groupSeeder,
		passwordService: utils.NewPasswordService(),
		validator:       utils.NewValidationService(),
	}
}

func (as *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	if validationErrors := as.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, errors.New("validation failed")
	}

	existingUser, _ := as.userRepo.GetByEmail(ctx, req.Email)
	if existingUser != nil {
		return nil, errors.New("user with this email already exists")
	}

	hashedPassword, err := as.passwordService.HashPassword(req.Password)
	if err != nil {
		logrus.Error("Failed to hash password: ", err)
		return nil, errors.New("failed to create user")
	}

	user := models.User{
		Email:     req.Email,
		Phone:     utils.NormalizePhoneNumber(req.Phone),
		Password:  hashedPassword,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      models.RoleUser,
	}

	err = as.userRepo.Create(ctx, &user)
	if err != nil {
		logrus.Error("Failed to create user: ", err)
		return nil, err
	}

	// Every new account starts with the three default groups
	if err := as.groupSeeder.SeedDefaultGroups(ctx, user.ID.Hex()); err != nil {
		logrus.Error("Failed to seed default groups: ", err)
	} else if err := as.userRepo.MarkDefaultGroupsSeeded(ctx, user.ID.Hex()); err != nil {
		logrus.Warn("Failed to mark default groups seeded: ", err)
	}

	tokenPair, err := as.jwtService.GenerateTokenPair(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		logrus.Error("Failed to generate tokens: ", err)
		return nil, errors.New("failed to generate authentication tokens")
	}

	user.Password = ""

	return &models.AuthResponse{
		User:         user,
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		TokenType:    tokenPair.TokenType,
		ExpiresIn:    tokenPair.ExpiresIn,
	}, nil
}

func (as *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if validationErrors := as.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, errors.New("validation failed")
	}

	user, err := as.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, errors.New("invalid email or password")
	}

	if !user.IsActive {
		return nil, errors.New("account is deactivated")
	}

	isValid, err := as.passwordService.ComparePassword(req.Password, user.Password)
	if err != nil || !isValid {
		return nil, errors.New("invalid email or password")
	}

	if err := as.userRepo.UpdateLastSeen(ctx, user.ID.Hex()); err != nil {
		logrus.Warn("Failed to update last seen: ", err)
	}

	tokenPair, err := as.jwtService.GenerateTokenPair(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		logrus.Error("Failed to generate tokens: ", err)
		return nil, errors.New("failed to generate authentication tokens")
	}

	user.Password = ""

	return &models.AuthResponse{
		User:         *user,
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		TokenType:    tokenPair.TokenType,
		ExpiresIn:    tokenPair.ExpiresIn,
	}, nil
}

func (as *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	tokenPair, err := as.jwtService.RefreshToken(refreshToken)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}

	claims, err := as.jwtService.ValidateToken(tokenPair.AccessToken)
	if err != nil {
		return nil, errors.New("invalid token")
	}

	user, err := as.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, errors.New("user not found")
	}

	user.Password = ""

	return &models.AuthResponse{
		User:         *user,
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		TokenType:    tokenPair.TokenType,
		ExpiresIn:    tokenPair.ExpiresIn,
	}, nil
}

func (as *AuthService) ValidateToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := as.jwtService.ValidateToken(token)
	if err != nil {
		return nil, errors.New("invalid token")
	}

	user, err := as.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, errors.New("user not found")
	}

	if !user.IsActive {
		return nil, errors.New("account is deactivated")
	}

	user.Password = ""
	return user, nil
}

func (as *AuthService) Logout(ctx context.Context, token string) error {
	return as.jwtService.RevokeToken(token)
}

func (as *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := as.userRepo.GetByID(ctx, userID)
	if err != nil {
		return errors.New("user not found")
	}

	isValid, err := as.passwordService.ComparePassword(currentPassword, user.Password)
	if err != nil || !isValid {
		return errors.New("invalid current password")
	}

	hashedPassword, err := as.passwordService.HashPassword(newPassword)
	if err != nil {
		return errors.New("failed to update password")
	}

	return as.userRepo.Update(ctx, userID, bson.M{
		"password": hashedPassword,
	})
}
