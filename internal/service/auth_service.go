package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/rizalarfiyan/siakad-backend/internal/config"
	"github.com/rizalarfiyan/siakad-backend/internal/dto"
	"github.com/rizalarfiyan/siakad-backend/internal/model"
	"github.com/rizalarfiyan/siakad-backend/internal/repository"
	"github.com/rizalarfiyan/siakad-backend/pkg/apperror"
)

// Claims is the JWT payload: registered claims plus the resolved role, so
// role checks don't need a user lookup on every request.
type Claims struct {
	jwt.RegisteredClaims
	Role model.Role `json:"role"`
}

type AuthService interface {
	Login(ctx context.Context, input dto.LoginInput) (*dto.LoginResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*dto.MeResponse, error)
	ParseToken(tokenString string) (*Claims, error)
}

type authService struct {
	users    repository.UserRepository
	subjects repository.SubjectRepository
	rdb      *redis.Client
	cfg      *config.Config
}

func NewAuthService(users repository.UserRepository, subjects repository.SubjectRepository, rdb *redis.Client, cfg *config.Config) AuthService {
	return &authService{
		users:    users,
		subjects: subjects,
		rdb:      rdb,
		cfg:      cfg,
	}
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.LoginResponse, error) {
	ok, err := CheckAndCountAttempt(ctx, s.rdb, input.Username, s.cfg.LoginMaxAttempts, s.cfg.LoginWindow)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.ErrRateLimited
	}

	user, err := s.users.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	if user.Role != model.Role(input.Role) {
		return nil, fmt.Errorf("%w: invalid credentials", apperror.ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", apperror.ErrUnauthorized)
	}

	if err := ClearAttempts(ctx, s.rdb, input.Username); err != nil {
		return nil, err
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token:    token,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*dto.MeResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	res := &dto.MeResponse{
		User:    user,
		Student: user.Student,
		Teacher: user.Teacher,
	}

	if user.Student != nil {
		subjects, err := s.subjects.FindByCourseSemester(ctx, user.Student.CourseID, user.Student.Semester)
		if err != nil {
			return nil, err
		}
		res.Subjects = subjects
	}

	return res, nil
}

func (s *authService) generateToken(user *model.User) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role: user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *authService) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperror.ErrUnauthorized
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, apperror.ErrUnauthorized
	}

	return claims, nil
}
