package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SparkMatchPlatform/internal/domain"
	"SparkMatchPlatform/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileRepository реализация репозитория анкет для PostgreSQL
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository создает новый экземпляр ProfileRepository
func NewProfileRepository(pool *pgxpool.Pool) repository.ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// FindByUserID возвращает анкету пользователя
func (r *ProfileRepository) FindByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `SELECT user_id, first_name, last_name, bio, birth_date, gender, interested_in, latitude, longitude, created_at, updated_at
		FROM profiles WHERE user_id = $1`

	var profile domain.Profile
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.FirstName,
		&profile.LastName,
		&profile.Bio,
		&profile.BirthDate,
		&profile.Gender,
		&profile.InterestedIn,
		&profile.Latitude,
		&profile.Longitude,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &profile, nil
}

// FindSummaryByUserID возвращает публичную проекцию анкеты
// Проекция строится одним запросом и возвращается полностью заполненной
func (r *ProfileRepository) FindSummaryByUserID(ctx context.Context, userID string) (*domain.ProfileSummary, error) {
	query := `SELECT user_id, first_name, bio, birth_date, gender
		FROM profiles WHERE user_id = $1`

	var summary domain.ProfileSummary
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&summary.UserID,
		&summary.FirstName,
		&summary.Bio,
		&summary.BirthDate,
		&summary.Gender,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile summary: %w", err)
	}

	return &summary, nil
}

// Discover возвращает кандидатов для ленты подбора.
// Исключаются: сам пользователь, анкеты с исходящим лайком,
// блокировки в любую сторону, неактивные и скрытые аккаунты.
// Возрастное окно считается по календарным годам рождения.
// Совместимость предпочтений двусторонняя: кандидат подходит
// пользователю, и пользователь подходит кандидату
func (r *ProfileRepository) Discover(ctx context.Context, filter *domain.DiscoveryFilter) ([]*domain.Profile, error) {
	currentYear := time.Now().Year()
	minBirthDate := time.Date(currentYear-filter.MaxAge, time.January, 1, 0, 0, 0, 0, time.UTC)
	maxBirthDate := time.Date(currentYear-filter.MinAge, time.December, 31, 0, 0, 0, 0, time.UTC)

	query := `SELECT p.user_id, p.first_name, p.last_name, p.bio, p.birth_date, p.gender, p.interested_in, p.latitude, p.longitude, p.created_at, p.updated_at
		FROM profiles p
		JOIN users u ON u.id = p.user_id
		WHERE p.user_id <> $1
			AND u.is_active = TRUE
			AND u.is_shadow_banned = FALSE
			AND p.birth_date BETWEEN $2 AND $3
			AND p.user_id NOT IN (SELECT to_user_id FROM likes WHERE from_user_id = $1)
			AND p.user_id NOT IN (SELECT blocked_id FROM blocks WHERE blocker_id = $1)
			AND p.user_id NOT IN (SELECT blocker_id FROM blocks WHERE blocked_id = $1)
			AND (p.interested_in = $4 OR p.interested_in = $5)`

	args := []interface{}{
		filter.UserID,
		minBirthDate,
		maxBirthDate,
		filter.Gender,
		domain.InterestAnyone,
	}

	// Фильтр по предпочтению пользователя. "Everyone" не сужает выборку
	if filter.InterestedIn != domain.InterestAnyone {
		args = append(args, filter.InterestedIn)
		query += fmt.Sprintf(" AND p.gender = $%d", len(args))
	}

	// Сортировка по квадрату планарного расстояния.
	// Это приближение, а не геодезическое расстояние:
	// для ранжирования ближайших кандидатов в пределах
	// одного города точности достаточно
	if filter.Latitude != nil && filter.Longitude != nil {
		args = append(args, *filter.Latitude)
		latArg := len(args)
		args = append(args, *filter.Longitude)
		longArg := len(args)

		query += fmt.Sprintf(` AND p.latitude IS NOT NULL AND p.longitude IS NOT NULL
			ORDER BY (p.latitude - $%d) * (p.latitude - $%d) + (p.longitude - $%d) * (p.longitude - $%d) ASC`,
			latArg, latArg, longArg, longArg)
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query discover feed: %w", err)
	}
	defer rows.Close()

	var profiles []*domain.Profile
	for rows.Next() {
		var profile domain.Profile
		err := rows.Scan(
			&profile.UserID,
			&profile.FirstName,
			&profile.LastName,
			&profile.Bio,
			&profile.BirthDate,
			&profile.Gender,
			&profile.InterestedIn,
			&profile.Latitude,
			&profile.Longitude,
			&profile.CreatedAt,
			&profile.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, &profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read discover feed: %w", err)
	}

	return profiles, nil
}
