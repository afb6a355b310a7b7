package pettycash

import (
	"context"
	"fmt"
	"strings"

	"github.com/warp/pettycash/generic"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// =============================================================================
// AUTH - Demo credential store
// =============================================================================

// DemoPassword is the password of every seeded demo user.
const DemoPassword = "pass"

// DemoUsers is one user per role.
var DemoUsers = []User{
	{Username: "req1", DisplayName: "Ravi (Requester)", Role: RoleRequester},
	{Username: "app1", DisplayName: "Anita (Approver)", Role: RoleApprover},
	{Username: "acc1", DisplayName: "Suresh (Accountant)", Role: RoleAccountant},
	{Username: "aud1", DisplayName: "Divya (Auditor)", Role: RoleAuditor},
}

const msgInvalidLogin = "Invalid username/password"

// Auth checks credentials against the Users collection. Passwords are
// stored as bcrypt hashes only.
type Auth struct {
	repo Repository
	cost int
	log  *zap.Logger
}

// NewAuth returns an Auth hashing with cost. A cost outside bcrypt's range
// falls back to bcrypt.DefaultCost.
func NewAuth(repo Repository, cost int, log *zap.Logger) *Auth {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Auth{repo: repo, cost: cost, log: log}
}

// Register adds a user. Usernames are unique ignoring case.
func (a *Auth) Register(ctx context.Context, username, password, displayName string, role Role) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return User{}, generic.Validation("Username is required")
	}
	if password == "" {
		return User{}, generic.Validation("Password is required")
	}
	if _, ok := permissions[role]; !ok {
		return User{}, generic.Validation("Unknown role", "Role: "+string(role))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	var user User
	err = a.repo.WithTx(ctx, func(c Collections) error {
		_, found, err := findUser(ctx, c, username)
		if err != nil {
			return err
		}
		if found {
			return generic.DuplicateKey("Username already taken", "Username: "+username)
		}
		user, err = c.Users.Add(ctx, User{
			Username:     username,
			PasswordHash: string(hash),
			DisplayName:  displayName,
			Role:         role,
		})
		return err
	})
	if err != nil {
		return User{}, err
	}
	a.log.Info("user registered", zap.String("username", username), zap.String("role", string(role)))
	return user, nil
}

// SeedDemoUsers registers DemoUsers when no user exists yet.
func (a *Auth) SeedDemoUsers(ctx context.Context) error {
	var existing []User
	err := a.repo.View(ctx, func(c Collections) error {
		var err error
		existing, err = c.Users.List(ctx)
		return err
	})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, u := range DemoUsers {
		if _, err := a.Register(ctx, u.Username, DemoPassword, u.DisplayName, u.Role); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.Username, err)
		}
	}
	return nil
}

// Login matches username case-insensitively and checks the password.
// Unknown users and wrong passwords fail the same way.
func (a *Auth) Login(ctx context.Context, username, password string) (Session, error) {
	var (
		user  User
		found bool
	)
	err := a.repo.View(ctx, func(c Collections) error {
		var err error
		user, found, err = findUser(ctx, c, strings.TrimSpace(username))
		return err
	})
	if err != nil {
		return Session{}, err
	}
	if !found || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		a.log.Debug("login refused", zap.String("username", username))
		return Session{}, generic.Validation(msgInvalidLogin)
	}

	a.log.Info("login", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	return Session{Actor: user.Username, DisplayName: user.DisplayName, Role: user.Role}, nil
}

func findUser(ctx context.Context, c Collections, username string) (User, bool, error) {
	users, err := generic.Where(ctx, c.Users, func(u User) bool {
		return strings.EqualFold(u.Username, username)
	})
	if err != nil || len(users) == 0 {
		return User{}, false, err
	}
	return users[0], true, nil
}
