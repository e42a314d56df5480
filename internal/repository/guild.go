package repository

import (
	"context"
	"database/sql"
	"fmt"

	"gym-service/internal/domain"

	log "github.com/sirupsen/logrus"
)

type postgresGuildRepository struct {
	db *sql.DB
}

func NewPostgresGuildRepository(db *sql.DB) *postgresGuildRepository {
	return &postgresGuildRepository{db: db}
}

func (r *postgresGuildRepository) Create(ctx context.Context, guild *domain.Guild, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	log.WithFields(log.Fields{
		"guild_id": guild.ID,
		"name":     guild.Name,
		"owner_id": ownerID,
	}).Info("Creating guild in database")

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO guilds (id, name) VALUES ($1, $2)`,
		guild.ID, guild.Name,
	); err != nil {
		log.WithError(err).WithField("guild_id", guild.ID).Error("Failed to create guild")
		return fmt.Errorf("failed to create guild: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO guild_members (guild_id, user_id, role) VALUES ($1, $2, $3)`,
		guild.ID, ownerID, domain.GuildRoleOwner,
	); err != nil {
		return fmt.Errorf("failed to add guild owner: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET guild_id = $1, guild_role = $2, updated_at = NOW() WHERE id = $3`,
		guild.ID, domain.GuildRoleOwner, ownerID,
	); err != nil {
		return fmt.Errorf("failed to update owner's guild: %w", err)
	}

	return tx.Commit()
}

func (r *postgresGuildRepository) GetByID(ctx context.Context, id string) (*domain.Guild, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT id, name, created_at, updated_at FROM guilds WHERE id = $1`

	var guild domain.Guild
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&guild.ID, &guild.Name, &guild.CreatedAt, &guild.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrGuildNotFound
		}
		log.WithError(err).WithField("guild_id", id).Error("Failed to get guild")
		return nil, fmt.Errorf("failed to get guild: %w", err)
	}

	return &guild, nil
}

func (r *postgresGuildRepository) GetByName(ctx context.Context, name string) (*domain.Guild, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT id, name, created_at, updated_at FROM guilds WHERE name = $1`

	var guild domain.Guild
	err := r.db.QueryRowContext(ctx, query, name).Scan(
		&guild.ID, &guild.Name, &guild.CreatedAt, &guild.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrGuildNotFound
		}
		log.WithError(err).WithField("name", name).Error("Failed to get guild by name")
		return nil, fmt.Errorf("failed to get guild by name: %w", err)
	}

	return &guild, nil
}

func (r *postgresGuildRepository) ListMembers(ctx context.Context, guildID string) ([]domain.GuildMemberSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT m.user_id, u.username, m.role, u.climbing_level
		FROM guild_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.guild_id = $1
		ORDER BY m.joined_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, guildID)
	if err != nil {
		log.WithError(err).WithField("guild_id", guildID).Error("Failed to list guild members")
		return nil, fmt.Errorf("failed to list guild members: %w", err)
	}
	defer rows.Close()

	var members []domain.GuildMemberSummary
	for rows.Next() {
		var m domain.GuildMemberSummary
		if err := rows.Scan(&m.UserID, &m.Username, &m.Role, &m.ClimbingLevel); err != nil {
			return nil, fmt.Errorf("failed to scan guild member row: %w", err)
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over guild member rows: %w", err)
	}

	return members, nil
}

func (r *postgresGuildRepository) ListInvites(ctx context.Context, guildID string) ([]domain.GuildMemberSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT i.user_id, u.username, '' AS role, u.climbing_level
		FROM guild_invites i
		JOIN users u ON u.id = i.user_id
		WHERE i.guild_id = $1
		ORDER BY i.invited_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, guildID)
	if err != nil {
		log.WithError(err).WithField("guild_id", guildID).Error("Failed to list guild invites")
		return nil, fmt.Errorf("failed to list guild invites: %w", err)
	}
	defer rows.Close()

	var invites []domain.GuildMemberSummary
	for rows.Next() {
		var m domain.GuildMemberSummary
		if err := rows.Scan(&m.UserID, &m.Username, &m.Role, &m.ClimbingLevel); err != nil {
			return nil, fmt.Errorf("failed to scan guild invite row: %w", err)
		}
		invites = append(invites, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over guild invite rows: %w", err)
	}

	return invites, nil
}

func (r *postgresGuildRepository) IsMember(ctx context.Context, guildID, userID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT EXISTS(SELECT 1 FROM guild_members WHERE guild_id = $1 AND user_id = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, guildID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check guild membership: %w", err)
	}

	return exists, nil
}

func (r *postgresGuildRepository) IsInvited(ctx context.Context, guildID, userID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT EXISTS(SELECT 1 FROM guild_invites WHERE guild_id = $1 AND user_id = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, guildID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check guild invite: %w", err)
	}

	return exists, nil
}

// AddMember joins a user to a guild, consuming any pending invite and
// updating the user's guild columns, all in one transaction.
func (r *postgresGuildRepository) AddMember(ctx context.Context, guildID, userID, role string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO guild_members (guild_id, user_id, role) VALUES ($1, $2, $3)`,
		guildID, userID, role,
	); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"guild_id": guildID,
			"user_id":  userID,
		}).Error("Failed to add guild member")
		return fmt.Errorf("failed to add guild member: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM guild_invites WHERE guild_id = $1 AND user_id = $2`,
		guildID, userID,
	); err != nil {
		return fmt.Errorf("failed to consume guild invite: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET guild_id = $1, guild_role = $2, updated_at = NOW() WHERE id = $3`,
		guildID, role, userID,
	); err != nil {
		return fmt.Errorf("failed to update member's guild: %w", err)
	}

	return tx.Commit()
}

// RemoveMember takes a user out of a guild and clears the user's guild
// columns in one transaction.
func (r *postgresGuildRepository) RemoveMember(ctx context.Context, guildID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM guild_members WHERE guild_id = $1 AND user_id = $2`,
		guildID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove guild member: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not determine rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrNotGuildMember
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET guild_id = NULL, guild_role = NULL, updated_at = NOW() WHERE id = $1`,
		userID,
	); err != nil {
		return fmt.Errorf("failed to clear member's guild: %w", err)
	}

	return tx.Commit()
}

func (r *postgresGuildRepository) AddInvite(ctx context.Context, guildID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `INSERT INTO guild_invites (guild_id, user_id) VALUES ($1, $2)`

	if _, err := r.db.ExecContext(ctx, query, guildID, userID); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"guild_id": guildID,
			"user_id":  userID,
		}).Error("Failed to add guild invite")
		return fmt.Errorf("failed to add guild invite: %w", err)
	}

	return nil
}

// List returns up to limit guilds, optionally filtered by a
// case-insensitive name prefix.
func (r *postgresGuildRepository) List(ctx context.Context, nameQuery string, limit int) ([]domain.Guild, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT id, name, created_at, updated_at
		FROM guilds
		WHERE ($1 = '' OR name ILIKE $1 || '%')
		ORDER BY name ASC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, nameQuery, limit)
	if err != nil {
		log.WithError(err).Error("Failed to list guilds")
		return nil, fmt.Errorf("failed to list guilds: %w", err)
	}
	defer rows.Close()

	var guilds []domain.Guild
	for rows.Next() {
		var guild domain.Guild
		if err := rows.Scan(&guild.ID, &guild.Name, &guild.CreatedAt, &guild.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan guild row: %w", err)
		}
		guilds = append(guilds, guild)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over guild rows: %w", err)
	}

	return guilds, nil
}
