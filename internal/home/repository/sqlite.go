package repository

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"home-layout/internal/home/models"
	layout "home-layout/internal/layout/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ============================================================
// SQLite Repository
// ============================================================

//go:embed migrations/*.sql
var migrations embed.FS

var ErrNotFound = errors.New("not found")

type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Init запускает миграции и убеждается в наличии admin.
func (r *Repository) Init(ctx context.Context, adminLogin, adminPassword string) error {
	if err := r.runMigrations(ctx); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return r.ensureAdmin(ctx, adminLogin, adminPassword)
}

// ============================================================
// Users
// ============================================================

func (r *Repository) GetByCredentials(ctx context.Context, login, password string) (*models.User, error) {
	u, err := r.getUser(ctx, `WHERE login = ?`, login)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrNotFound
	}
	return u, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getUser(ctx, `WHERE id = ?`, id)
}

// CreateUser заводит пользователя с bcrypt-хешем пароля.
func (r *Repository) CreateUser(ctx context.Context, u models.User, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	_, err = r.db.ExecContext(ctx, `
        INSERT INTO users (id, login, password_hash, full_name, email)
        VALUES (?, ?, ?, ?, ?)
    `, u.ID, u.Login, string(hash), u.FullName, u.Email)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return r.GetByID(ctx, u.ID)
}

func (r *Repository) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, login, password_hash, full_name, email, created_at
        FROM users
    `+where, arg)

	var u models.User
	if err := row.Scan(&u.ID, &u.Login, &u.PasswordHash, &u.FullName, &u.Email, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ============================================================
// Floor Layouts
// ============================================================

// SaveLayout перезаписывает раскладку этажа целиком.
func (r *Repository) SaveLayout(ctx context.Context, floorID, ownerID string, rooms []layout.Room) error {
	if rooms == nil {
		rooms = []layout.Room{}
	}
	data, err := json.Marshal(rooms)
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
        INSERT INTO floor_layouts (floor_id, owner_id, rooms, updated_at)
        VALUES (?, ?, ?, strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
        ON CONFLICT(floor_id) DO UPDATE SET
            rooms = excluded.rooms,
            updated_at = excluded.updated_at
    `, floorID, ownerID, string(data))
	if err != nil {
		return fmt.Errorf("save layout %s: %w", floorID, err)
	}
	return nil
}

func (r *Repository) GetLayout(ctx context.Context, floorID string) (*models.FloorLayout, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT floor_id, owner_id, rooms, updated_at
        FROM floor_layouts
        WHERE floor_id = ?
    `, floorID)

	var (
		l   models.FloorLayout
		raw string
	)
	if err := row.Scan(&l.FloorID, &l.OwnerID, &raw, &l.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(raw), &l.Rooms); err != nil {
		return nil, fmt.Errorf("decode layout %s: %w", floorID, err)
	}
	return &l, nil
}

// ============================================================
// Migrations & Seeding
// ============================================================

func (r *Repository) runMigrations(ctx context.Context) error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	for _, e := range entries {
		data, err := migrations.ReadFile("migrations/" + e.Name())
		if err != nil {
			return fmt.Errorf("read migration %s: %w", e.Name(), err)
		}
		if _, err := r.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", e.Name(), err)
		}
	}
	return nil
}

func (r *Repository) ensureAdmin(ctx context.Context, login, password string) error {
	_, err := r.getUser(ctx, `WHERE login = ?`, login)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	_, err = r.CreateUser(ctx, models.User{
		ID:       "11111111-1111-1111-1111-111111111111",
		Login:    login,
		FullName: "Admin User",
		Email:    "admin@example.com",
	}, password)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}

// OpenSQLite открывает sqlite по указанному пути.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
