package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/voltride/rental-service/internal/core/domain"
)

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (fakeHasher) Verify(password, hash string) bool    { return "hashed:"+password == hash }

type fakeTokens struct{}

func (fakeTokens) IssueToken(payload *domain.TokenPayload, _ time.Duration) (string, error) {
	return "token:" + payload.UserID.String(), nil
}

func (fakeTokens) VerifyToken(string) (*domain.TokenPayload, error) {
	return nil, errors.New("not implemented")
}

func newUserFixture(t *testing.T) (*UserService, *fakeUserRepo, *fakeMembershipRepo) {
	t.Helper()

	users := newFakeUserRepo()
	plans := newFakeMembershipRepo()
	svc := NewUserService(users, plans, fakeHasher{}, fakeTokens{}, nopLogger{}, validator.New())
	return svc, users, plans
}

func TestRegister(t *testing.T) {
	svc, _, _ := newUserFixture(t)

	user, err := svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected user role, got %s", user.Role)
	}
	if !user.WalletBalance.IsZero() {
		t.Fatalf("expected empty wallet, got %s", user.WalletBalance)
	}
	if user.PasswordHash == "s3cret-pass" {
		t.Fatalf("password stored in clear")
	}
}

func TestRegisterShortPassword(t *testing.T) {
	svc, _, _ := newUserFixture(t)

	_, err := svc.Register(context.Background(), "Alice", "alice@example.com", "short")
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestRegisterInvalidEmail(t *testing.T) {
	svc, _, _ := newUserFixture(t)

	_, err := svc.Register(context.Background(), "Alice", "not-an-email", "s3cret-pass")
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newUserFixture(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret-pass"); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, err := svc.Register(ctx, "Other Alice", "alice@example.com", "s3cret-pass"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _, _ := newUserFixture(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, user, err := svc.Login(ctx, "alice@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a token")
	}
	if user.ID != registered.ID {
		t.Fatalf("logged in as the wrong user")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newUserFixture(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret-pass"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, _, err := svc.Login(ctx, "alice@example.com", "wrong-pass"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _ := newUserFixture(t)

	if _, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever-pass"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetProfileWithPlan(t *testing.T) {
	svc, users, plans := newUserFixture(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	planID := uuid.New()
	plans.plans[planID] = &domain.MembershipPlan{
		ID:           planID,
		Name:         "Premium Plan",
		Cost:         decimal.RequireFromString("49.99"),
		DiscountRate: decimal.RequireFromString("0.10"),
	}
	if err := users.SetPlan(ctx, registered.ID, planID); err != nil {
		t.Fatalf("SetPlan: %v", err)
	}

	user, plan, err := svc.GetProfile(ctx, registered.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("wrong user")
	}
	if plan == nil || plan.ID != planID {
		t.Fatalf("expected the purchased plan")
	}
}

func TestGetProfileWithoutPlan(t *testing.T) {
	svc, _, _ := newUserFixture(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, plan, err := svc.GetProfile(ctx, registered.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if plan != nil {
		t.Fatalf("expected no plan")
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, users, _ := newUserFixture(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.UpdateProfile(ctx, registered.ID, nil, nil); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for empty update, got %v", err)
	}

	short := "short"
	if err := svc.UpdateProfile(ctx, registered.ID, nil, &short); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for short password, got %v", err)
	}

	name := "Alice Jones"
	password := "new-s3cret-pass"
	if err := svc.UpdateProfile(ctx, registered.ID, &name, &password); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	user, _ := users.GetUserByID(ctx, registered.ID)
	if user.Name != name {
		t.Fatalf("name not updated")
	}
	if _, _, err := svc.Login(ctx, "alice@example.com", password); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}
