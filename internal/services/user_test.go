package services

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/GregMSThompson/imihigo-backend/internal/dto"
	"github.com/GregMSThompson/imihigo-backend/internal/errs"
	"github.com/GregMSThompson/imihigo-backend/internal/models"
	"github.com/GregMSThompson/imihigo-backend/pkg/helpers"
)

type fakeUserStore struct {
	users   map[string]*models.User
	updates int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*models.User)}
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *models.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return errs.NewAlreadyExistsError("user with this email already exists")
		}
	}
	f.users[user.UID] = user
	return nil
}

func (f *fakeUserStore) UpdateUser(_ context.Context, user *models.User) error {
	f.updates++
	f.users[user.UID] = user
	return nil
}

func (f *fakeUserStore) GetUser(_ context.Context, uid string) (*models.User, error) {
	u, ok := f.users[uid]
	if !ok {
		return nil, errs.NewNotFoundError("user not found")
	}
	return u, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errs.NewNotFoundError("user not found")
}

type stubTokens struct {
	token string
	err   error
	uid   string
}

func (s *stubTokens) CustomToken(_ context.Context, uid string) (string, error) {
	s.uid = uid
	return s.token, s.err
}

func newTestUserService() (*userService, *fakeUserStore, *stubTokens) {
	store := newFakeUserStore()
	tokens := &stubTokens{token: "custom-token"}
	svc := NewUserService(store, tokens, []string{" Planning@District.gov.rw "})
	svc.cost = bcrypt.MinCost
	return svc, store, tokens
}

func registerTestUser(t *testing.T, svc *userService) *models.User {
	t.Helper()
	user, err := svc.Register(helpers.TestCtx(), dto.RegisterRequest{
		Email:    " Planner@District.gov.rw ",
		Password: "s3cret-pass",
		Name:     "Planner",
		Role:     "planner",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return user
}

func TestUserRegister(t *testing.T) {
	svc, store, _ := newTestUserService()

	user := registerTestUser(t, svc)
	if user.Email != "planner@district.gov.rw" || !user.IsActive || user.UID == "" {
		t.Fatalf("unexpected user %+v", user)
	}
	if user.PasswordHash == "s3cret-pass" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")) != nil {
		t.Fatalf("password not hashed")
	}
	if len(store.users) != 1 {
		t.Fatalf("user not stored")
	}

	_, err := svc.Register(helpers.TestCtx(), dto.RegisterRequest{Email: "planner@district.gov.rw", Password: "another-pass", Name: "x", Role: "planner"})
	var ae *errs.AlreadyExistsError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AlreadyExistsError got %v", err)
	}
}

func TestUserRegister_AdminRoleReserved(t *testing.T) {
	svc, store, _ := newTestUserService()

	for _, role := range []string{"admin", " Admin "} {
		_, err := svc.Register(helpers.TestCtx(), dto.RegisterRequest{
			Email:    "x@y.rw",
			Name:     "x",
			Role:     role,
			Password: "12345678",
		})
		var ve *errs.ValidationError
		if !errors.As(err, &ve) || ve.Fields["role"] == "" {
			t.Fatalf("role %q: expected role validation error got %v", role, err)
		}
	}
	if len(store.users) != 0 {
		t.Fatalf("refused registrations must not be stored")
	}
}

func TestUserRegister_ConfiguredAdmin(t *testing.T) {
	svc, _, _ := newTestUserService()

	user, err := svc.Register(helpers.TestCtx(), dto.RegisterRequest{
		Email:    "planning@district.gov.rw",
		Name:     "Planning",
		Role:     "Director of Planning",
		Password: "12345678",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Role != models.RoleAdmin || !user.IsActive {
		t.Fatalf("configured email should register as active admin, got %+v", user)
	}
}

func TestUserLogin(t *testing.T) {
	svc, store, tokens := newTestUserService()
	user := registerTestUser(t, svc)

	resp, err := svc.Login(helpers.TestCtx(), dto.LoginRequest{Email: "PLANNER@district.gov.rw", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Token != "custom-token" || tokens.uid != user.UID || resp.User.UID != user.UID {
		t.Fatalf("unexpected login response %+v", resp)
	}
	if store.updates != 1 {
		t.Fatalf("last login not recorded")
	}
}

func TestUserLoginFailures(t *testing.T) {
	svc, store, tokens := newTestUserService()
	user := registerTestUser(t, svc)

	_, err := svc.Login(helpers.TestCtx(), dto.LoginRequest{Email: "nobody@district.gov.rw", Password: "x"})
	var nf *errs.NotFoundError
	if !errors.As(err, &nf) || nf.Message != "user not found, please register first" {
		t.Fatalf("expected NotFoundError got %v", err)
	}

	_, err = svc.Login(helpers.TestCtx(), dto.LoginRequest{Email: user.Email, Password: "wrong-pass"})
	var ue *errs.UnauthorizedError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnauthorizedError got %v", err)
	}

	tokens.err = errors.New("firebase down")
	_, err = svc.Login(helpers.TestCtx(), dto.LoginRequest{Email: user.Email, Password: "s3cret-pass"})
	var ee *errs.ExternalServiceError
	if !errors.As(err, &ee) || ee.Service != "firebase" {
		t.Fatalf("expected ExternalServiceError got %v", err)
	}

	store.users[user.UID].IsActive = false
	_, err = svc.Login(helpers.TestCtx(), dto.LoginRequest{Email: user.Email, Password: "s3cret-pass"})
	var fe *errs.ForbiddenError
	if !errors.As(err, &fe) {
		t.Fatalf("expected ForbiddenError got %v", err)
	}
}

func TestUserVerify(t *testing.T) {
	svc, _, _ := newTestUserService()
	registerTestUser(t, svc)

	resp, err := svc.VerifyUser(helpers.TestCtx(), dto.VerifyUserRequest{Email: "planner@district.gov.rw", Role: "Planner"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Verified || resp.UserName != "Planner" {
		t.Fatalf("unexpected response %+v", resp)
	}

	resp, err = svc.VerifyUser(helpers.TestCtx(), dto.VerifyUserRequest{Email: "planner@district.gov.rw", Role: "admin"})
	var nf *errs.NotFoundError
	if !errors.As(err, &nf) || resp.Verified {
		t.Fatalf("expected NotFoundError for wrong role got %v", err)
	}
}

func TestUserResetPassword(t *testing.T) {
	svc, _, _ := newTestUserService()
	user := registerTestUser(t, svc)
	ctx := helpers.TestCtx()

	err := svc.ResetPassword(ctx, dto.ResetPasswordRequest{Email: user.Email, Role: "planner", NewPassword: "short"})
	var ve *errs.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError got %v", err)
	}

	if err := svc.ResetPassword(ctx, dto.ResetPasswordRequest{Email: user.Email, Role: "planner", NewPassword: "brand-new-pass"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Login(ctx, dto.LoginRequest{Email: user.Email, Password: "s3cret-pass"}); err == nil {
		t.Fatalf("old password should no longer work")
	}
	if _, err := svc.Login(ctx, dto.LoginRequest{Email: user.Email, Password: "brand-new-pass"}); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestUserGet(t *testing.T) {
	svc, _, _ := newTestUserService()
	user := registerTestUser(t, svc)

	got, err := svc.GetUser(helpers.TestCtx(), user.UID)
	if err != nil || got.Email != user.Email {
		t.Fatalf("unexpected result %+v %v", got, err)
	}
}
