package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"eventboard/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

const eventColumns = `id, name, image_url, description, short_description, start_date, end_date,
	location, city, pay_data, max_members, type, invite_only, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var shortDesc, location, city, payData sql.NullString
	var startDate sql.NullTime
	var maxMembers sql.NullInt64
	err := row.Scan(
		&e.ID, &e.Name, &e.ImageURL, &e.Description, &shortDesc, &startDate, &e.EndDate,
		&location, &city, &payData, &maxMembers, &e.Type, &e.InviteOnly, &e.Status,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if shortDesc.Valid {
		e.ShortDescription = &shortDesc.String
	}
	if startDate.Valid {
		e.StartDate = &startDate.Time
	}
	if location.Valid {
		e.Location = &location.String
	}
	if city.Valid {
		e.City = &city.String
	}
	if payData.Valid {
		e.PayData = &payData.String
	}
	if maxMembers.Valid {
		v := int(maxMembers.Int64)
		e.MaxMembers = &v
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (name, image_url, description, short_description, start_date, end_date,
			location, city, pay_data, max_members, type, invite_only, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Name, e.ImageURL, e.Description, e.ShortDescription, e.StartDate, e.EndDate,
		e.Location, e.City, e.PayData, e.MaxMembers, e.Type, e.InviteOnly, e.Status,
		e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadRelationIDs(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// loadRelationIDs fills the member, like, and invited id sets. It is the only
// relation fetch GetByID performs; comments are loaded via ListComments.
func (r *eventRepository) loadRelationIDs(ctx context.Context, e *domain.Event) error {
	for _, rel := range []struct {
		table string
		dest  *[]string
	}{
		{"event_members", &e.MemberIDs},
		{"event_likes", &e.LikeIDs},
		{"event_invited_users", &e.InvitedIDs},
	} {
		rows, err := r.DB.QueryContext(ctx,
			fmt.Sprintf(`SELECT user_id FROM %s WHERE event_id = $1 ORDER BY user_id`, rel.table), e.ID)
		if err != nil {
			return err
		}
		ids := make([]string, 0)
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			ids = append(ids, id)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()
		*rel.dest = ids
	}
	return nil
}

// List returns events matching the filter. Relation id sets are not fetched;
// callers that need them use GetByID or ListMembers.
func (r *eventRepository) List(ctx context.Context, f domain.EventFilter) ([]*domain.Event, error) {
	var conds []string
	var args []any
	n := 1

	arg := func(v any) string {
		args = append(args, v)
		p := fmt.Sprintf("$%d", n)
		n++
		return p
	}

	if f.MemberID != "" {
		conds = append(conds, fmt.Sprintf(
			`EXISTS (SELECT 1 FROM event_members m WHERE m.event_id = e.id AND m.user_id = %s)`,
			arg(f.MemberID)))
	}
	if f.LikedBy != "" {
		conds = append(conds, fmt.Sprintf(
			`EXISTS (SELECT 1 FROM event_likes l WHERE l.event_id = e.id AND l.user_id = %s)`,
			arg(f.LikedBy)))
	}
	if f.From != nil {
		conds = append(conds, fmt.Sprintf(`e.end_date >= %s`, arg(*f.From)))
	}
	if f.To != nil {
		conds = append(conds, fmt.Sprintf(`(e.start_date IS NULL OR e.start_date <= %s)`, arg(*f.To)))
	}
	if f.MaxMembers != nil {
		conds = append(conds, fmt.Sprintf(`e.max_members = %s`, arg(*f.MaxMembers)))
	}
	if f.Name != "" {
		conds = append(conds, fmt.Sprintf(`e.name = %s`, arg(f.Name)))
	}
	if len(f.Types) > 0 {
		types := make([]string, len(f.Types))
		for i, t := range f.Types {
			types[i] = string(t)
		}
		conds = append(conds, fmt.Sprintf(`e.type = ANY(%s)`, arg(pq.Array(types))))
	}
	if len(f.Cities) > 0 {
		conds = append(conds, fmt.Sprintf(`e.city = ANY(%s)`, arg(pq.Array(f.Cities))))
	}
	if f.Status != nil {
		conds = append(conds, fmt.Sprintf(`e.status = %s`, arg(string(*f.Status))))
	}
	if !f.IncludeCompleted && (f.Status == nil || *f.Status != domain.StatusCompleted) {
		conds = append(conds, fmt.Sprintf(`e.status <> %s`, arg(string(domain.StatusCompleted))))
	}
	if !f.IncludeCancelled && (f.Status == nil || *f.Status != domain.StatusCancelled) {
		conds = append(conds, fmt.Sprintf(`e.status <> %s`, arg(string(domain.StatusCancelled))))
	}
	if f.VisibleTo != "" {
		conds = append(conds, fmt.Sprintf(
			`(NOT e.invite_only OR EXISTS (SELECT 1 FROM event_invited_users i WHERE i.event_id = e.id AND i.user_id = %s))`,
			arg(f.VisibleTo)))
	}

	query := `SELECT ` + prefixColumns("e") + ` FROM events e`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY e.created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func prefixColumns(alias string) string {
	cols := strings.Split(eventColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

func (r *eventRepository) Update(ctx context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	n := 1
	set := func(col string, v any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, n))
		args = append(args, v)
		n++
	}
	if upd.Name != nil {
		set("name", *upd.Name)
	}
	if upd.ImageURL != nil {
		set("image_url", *upd.ImageURL)
	}
	if upd.Description != nil {
		set("description", *upd.Description)
	}
	if upd.ShortDescription != nil {
		set("short_description", *upd.ShortDescription)
	}
	if upd.StartDate != nil {
		set("start_date", *upd.StartDate)
	}
	if upd.EndDate != nil {
		set("end_date", *upd.EndDate)
	}
	if upd.Location != nil {
		set("location", *upd.Location)
	}
	if upd.City != nil {
		set("city", *upd.City)
	}
	if upd.PayData != nil {
		set("pay_data", *upd.PayData)
	}
	if upd.MaxMembers != nil {
		set("max_members", *upd.MaxMembers)
	}
	if upd.Type != nil {
		set("type", string(*upd.Type))
	}
	if upd.InviteOnly != nil {
		set("invite_only", *upd.InviteOnly)
	}
	if upd.Status != nil {
		set("status", string(*upd.Status))
	}
	if n == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING `+eventColumns, strings.Join(setClauses, ", "), n)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadRelationIDs(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// lockEvent takes the event row lock inside tx and returns the current
// status and capacity. The lock serializes all relation mutations on the
// same event for the duration of the transaction.
func lockEvent(ctx context.Context, tx *sql.Tx, eventID string) (domain.EventStatus, *int, error) {
	var status domain.EventStatus
	var maxMembers sql.NullInt64
	err := tx.QueryRowContext(ctx,
		`SELECT status, max_members FROM events WHERE id = $1 FOR UPDATE`, eventID,
	).Scan(&status, &maxMembers)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, domain.ErrNotFound
		}
		return "", nil, err
	}
	var max *int
	if maxMembers.Valid {
		v := int(maxMembers.Int64)
		max = &v
	}
	return status, max, nil
}

func (r *eventRepository) AddMember(ctx context.Context, eventID, userID string) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	status, max, err := lockEvent(ctx, tx, eventID)
	if err != nil {
		return 0, err
	}
	// Re-validate under the lock: the service checked these against a
	// possibly stale snapshot.
	switch status {
	case domain.StatusCancelled:
		return 0, domain.ErrEventCancelled
	case domain.StatusCompleted:
		return 0, domain.ErrEventCompleted
	}
	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM event_members WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID,
	).Scan(&exists); err != nil {
		return 0, err
	}
	if exists {
		return 0, domain.ErrAlreadyMember
	}
	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM event_members WHERE event_id = $1`, eventID,
	).Scan(&count); err != nil {
		return 0, err
	}
	if max != nil && count >= *max {
		return 0, domain.ErrEventFull
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO event_members (event_id, user_id) VALUES ($1, $2)`, eventID, userID,
	); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count + 1, nil
}

func (r *eventRepository) RemoveMember(ctx context.Context, eventID, userID string) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, _, err := lockEvent(ctx, tx, eventID); err != nil {
		return 0, err
	}
	result, err := tx.ExecContext(ctx,
		`DELETE FROM event_members WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return 0, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return 0, domain.ErrNotMember
	}
	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM event_members WHERE event_id = $1`, eventID,
	).Scan(&count); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *eventRepository) AddLike(ctx context.Context, eventID, userID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, _, err := lockEvent(ctx, tx, eventID); err != nil {
		return err
	}
	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM event_likes WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID,
	).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return domain.ErrAlreadyLiked
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO event_likes (event_id, user_id) VALUES ($1, $2)`, eventID, userID,
	); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *eventRepository) RemoveLike(ctx context.Context, eventID, userID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, _, err := lockEvent(ctx, tx, eventID); err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx,
		`DELETE FROM event_likes WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return domain.ErrNotLiked
	}
	return tx.Commit()
}

func (r *eventRepository) AddInvited(ctx context.Context, eventID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, userID := range userIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO event_invited_users (event_id, user_id) VALUES ($1, $2)
			 ON CONFLICT (event_id, user_id) DO NOTHING`, eventID, userID,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *eventRepository) CreateComment(ctx context.Context, c *domain.Comment) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, _, err := lockEvent(ctx, tx, c.EventID); err != nil {
		return err
	}
	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM event_comments WHERE event_id = $1 AND user_id = $2)`,
		c.EventID, c.UserID,
	).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return domain.ErrAlreadyCommented
	}
	if err := tx.QueryRowContext(ctx,
		`INSERT INTO event_comments (event_id, user_id, comment, rating, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		c.EventID, c.UserID, c.Body, c.Rating, c.CreatedAt,
	).Scan(&c.ID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *eventRepository) HasComment(ctx context.Context, eventID, userID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM event_comments WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID,
	).Scan(&exists)
	return exists, err
}

func (r *eventRepository) ListComments(ctx context.Context, eventID string) ([]*domain.Comment, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, event_id, user_id, comment, rating, created_at
		 FROM event_comments
		 WHERE event_id = $1
		 ORDER BY created_at DESC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	comments := make([]*domain.Comment, 0)
	for rows.Next() {
		c := &domain.Comment{}
		var rating sql.NullInt64
		if err := rows.Scan(&c.ID, &c.EventID, &c.UserID, &c.Body, &rating, &c.CreatedAt); err != nil {
			return nil, err
		}
		if rating.Valid {
			v := int(rating.Int64)
			c.Rating = &v
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *eventRepository) ListMembers(ctx context.Context, eventID string) ([]*domain.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT u.id, u.email, u.name, u.last_name, u.is_admin, u.created_at, u.updated_at
		 FROM users u
		 JOIN event_members m ON m.user_id = u.id
		 WHERE m.event_id = $1
		 ORDER BY u.id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	members := make([]*domain.User, 0)
	for rows.Next() {
		u := &domain.User{}
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.LastName, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		members = append(members, u)
	}
	return members, rows.Err()
}

func (r *eventRepository) UpdateStatus(ctx context.Context, id string, from, to domain.EventStatus) (bool, error) {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE events SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		string(to), id, string(from))
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
