package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"regexp"
	"strings"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// accesstokenの有効期限
const accessTokenTTL = 24 * time.Hour

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type AuthUsecase struct {
	cfg        config.Config
	users      repo.UserRepository
	mail       MailEnqueuer
	reconciler *ReconcileUsecase
	logger     *zap.Logger
}

func NewAuthUsecase(
	cfg config.Config,
	users repo.UserRepository,
	mail MailEnqueuer,
	reconciler *ReconcileUsecase,
	logger *zap.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		cfg:        cfg,
		users:      users,
		mail:       mail,
		reconciler: reconciler,
		logger:     logger,
	}
}

type RegisterInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Mobile    string `json:"mobile"`
}

type UserDTO struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Verification string `json:"verification"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`

	//ゲスト時に使っていたセッショントークン（あればログイン後にカートをマージ）
	SessionToken string `json:"-"`
}

type LoginOutput struct {
	User        UserDTO `json:"user"`
	AccessToken string  `json:"access_token"`
	ExpiresIn   int     `json:"expires_in"`
}

// Register は未検証ユーザーを作成し、確認コードをメールで送る。
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (UserDTO, error) {
	if msg, ok := validateRegister(in); !ok {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, msg)
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))

	//email重複チェック
	if _, err := u.users.FindByEmail(ctx, email); err == nil {
		return UserDTO{}, NewHTTPError(http.StatusConflict, "This email is already registered")
	} else if err != repo.ErrUserNotFound {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	code, err := newVerificationCode()
	if err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := &model.User{
		FirstName:        strings.TrimSpace(in.FirstName),
		LastName:         strings.TrimSpace(in.LastName),
		Email:            email,
		PasswordHash:     string(pwHash),
		Mobile:           strings.TrimSpace(in.Mobile),
		Verification:     model.VerificationPending,
		VerificationCode: code,
		Role:             model.RoleUser,
		IsActive:         true,
	}

	if err := u.users.Create(ctx, user); err != nil {
		return UserDTO{}, NewHTTPError(http.StatusConflict, "This email is already registered")
	}

	//確認コード送信はキュー経由。失敗しても登録は成立する。
	body := fmt.Sprintf("<p>Hi %s,</p><p>Your verification code is <b>%s</b></p>", user.FirstName, code)
	if err := u.mail.Enqueue(ctx, user.Email, "Verify your account", body); err != nil {
		u.logger.Warn("register: failed to enqueue verification mail",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
	}

	return toUserDTO(user), nil
}

// VerifyAccount は確認コードの照合でユーザーを検証済みにする。
func (u *AuthUsecase) VerifyAccount(ctx context.Context, email string, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return NewHTTPError(http.StatusBadRequest, "Verification code is required")
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err == repo.ErrUserNotFound {
		return NewHTTPError(http.StatusBadRequest, "Invalid verification code")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if user.Verification == model.VerificationVerified {
		return nil
	}
	if user.VerificationCode != code {
		return NewHTTPError(http.StatusBadRequest, "Invalid verification code")
	}

	user.Verification = model.VerificationVerified
	user.VerificationCode = ""
	if err := u.users.Update(ctx, user); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// Login は認証してJWTを返し、ゲストカートがあれば会員カートへ流し込む。
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return LoginOutput{}, NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err == repo.ErrUserNotFound {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return LoginOutput{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	//パスワード照合（bcrypt）
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	//メール未検証はまだ入れない
	if user.Verification != model.VerificationVerified {
		return LoginOutput{}, NewHTTPError(http.StatusForbidden, "Please verify your email before logging in")
	}

	//last_login更新。失敗してもログインは続行。
	now := time.Now()
	user.LastLoginAt = &now
	if err := u.users.Update(ctx, user); err != nil {
		u.logger.Warn("login: last_login update failed",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
	}

	accessToken, expiresIn, err := u.issueAccessToken(user)
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	//ゲストカートのマージ。失敗してもログインは成功のまま（カートはRedisに残る）。
	if tok := strings.TrimSpace(in.SessionToken); tok != "" {
		if _, err := u.reconciler.MergeSessionCart(ctx, user.ID, tok); err != nil {
			u.logger.Warn("login: session cart merge failed",
				zap.Int64("user_id", user.ID),
				zap.Error(err),
			)
		}
	}

	return LoginOutput{
		User:        toUserDTO(user),
		AccessToken: accessToken,
		ExpiresIn:   expiresIn,
	}, nil
}

func (u *AuthUsecase) Me(ctx context.Context, userID int64) (UserDTO, error) {
	if userID <= 0 {
		return UserDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil || user == nil {
		return UserDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if !user.IsActive {
		return UserDTO{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	return toUserDTO(user), nil
}

// jwt発行
func (u *AuthUsecase) issueAccessToken(user *model.User) (string, int, error) {
	now := time.Now()
	exp := now.Add(accessTokenTTL)

	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := t.SignedString([]byte(u.cfg.JWTSecret))
	if err != nil {
		return "", 0, err
	}

	return signed, int(accessTokenTTL.Seconds()), nil
}

// 5桁の確認コード
func newVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(100000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%05d", n.Int64()), nil
}

func validateRegister(in RegisterInput) (string, bool) {
	if strings.TrimSpace(in.FirstName) == "" {
		return "First Name is required.", false
	}
	if strings.TrimSpace(in.LastName) == "" {
		return "Last Name is required.", false
	}
	if !emailRe.MatchString(strings.TrimSpace(in.Email)) {
		return "Invalid email address", false
	}
	if len(in.Password) < 8 {
		return "Password must be at least 8 characters", false
	}
	return "", true
}

func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Role:         string(u.Role),
		Verification: string(u.Verification),
	}
}
