package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/dbx"
)

const linkColumns = `id, owner_id, title, target, position, icon, created_at, updated_at`

func (s *Store) ListLinks(ctx context.Context, ownerID string) ([]domain.LinkItem, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE owner_id = ? ORDER BY position ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, s.q(query), ownerID)
	if err != nil {
		return nil, domain.Unavailable(err)
	}
	defer rows.Close()

	links := []domain.LinkItem{}
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, domain.Unavailable(err)
		}
		links = append(links, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Unavailable(err)
	}
	return links, nil
}

func (s *Store) GetLink(ctx context.Context, ownerID, linkID string) (*domain.LinkItem, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE id = ? AND owner_id = ?`

	l, err := scanLink(s.db.QueryRowContext(ctx, s.q(query), linkID, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrLinkNotFound
	}
	if err != nil {
		return nil, domain.Unavailable(err)
	}
	return l, nil
}

// AppendLink reads the owner's count and inserts at that position inside one
// owner-locked transaction, so concurrent appends never share a position.
func (s *Store) AppendLink(ctx context.Context, link *domain.LinkItem) error {
	return s.withOwnerTx(ctx, link.OwnerID, func(ctx context.Context, tx dbx.DBTX) error {
		var count int
		if err := tx.QueryRowContext(ctx, s.q(`SELECT COUNT(*) FROM links WHERE owner_id = ?`), link.OwnerID).Scan(&count); err != nil {
			return err
		}

		query := `INSERT INTO links (id, owner_id, title, target, position, icon, created_at, updated_at)
				  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := tx.ExecContext(ctx, s.q(query),
			link.ID, link.OwnerID, link.Title, link.Target, count, string(link.Icon),
			toMillis(link.CreatedAt), toMillis(link.UpdatedAt),
		)
		if err != nil {
			return err
		}
		link.Position = count
		return nil
	})
}

// UpdateLink writes title, target and icon. Position is not part of the
// statement.
func (s *Store) UpdateLink(ctx context.Context, link *domain.LinkItem) error {
	query := `UPDATE links SET title = ?, target = ?, icon = ?, updated_at = ? WHERE id = ? AND owner_id = ?`

	res, err := s.db.ExecContext(ctx, s.q(query),
		link.Title, link.Target, string(link.Icon), toMillis(link.UpdatedAt), link.ID, link.OwnerID,
	)
	if err != nil {
		return domain.Unavailable(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Unavailable(err)
	}
	if n == 0 {
		return domain.ErrLinkNotFound
	}
	return nil
}

// DeleteLink removes the link and renumbers the survivors 0..n-1 in their
// previous order, in the same transaction.
func (s *Store) DeleteLink(ctx context.Context, ownerID, linkID string) error {
	return s.withOwnerTx(ctx, ownerID, func(ctx context.Context, tx dbx.DBTX) error {
		res, err := tx.ExecContext(ctx, s.q(`DELETE FROM links WHERE id = ? AND owner_id = ?`), linkID, ownerID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrLinkNotFound
		}

		ids, err := s.orderedIDs(ctx, tx, ownerID)
		if err != nil {
			return err
		}
		return s.assignPositions(ctx, tx, ownerID, ids)
	})
}

// ReorderLinks checks that ids is a permutation of the owner's current ids and
// then writes every position with a single statement.
func (s *Store) ReorderLinks(ctx context.Context, ownerID string, ids []string) error {
	return s.withOwnerTx(ctx, ownerID, func(ctx context.Context, tx dbx.DBTX) error {
		current, err := s.orderedIDs(ctx, tx, ownerID)
		if err != nil {
			return err
		}
		if !isPermutation(current, ids) {
			return domain.ErrOrderMismatch
		}
		return s.assignPositions(ctx, tx, ownerID, ids)
	})
}

func (s *Store) orderedIDs(ctx context.Context, tx dbx.DBTX, ownerID string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, s.q(`SELECT id FROM links WHERE owner_id = ? ORDER BY position ASC, id ASC`), ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// assignPositions sets position = index of each id with one UPDATE ... CASE.
func (s *Store) assignPositions(ctx context.Context, tx dbx.DBTX, ownerID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	var b strings.Builder
	args := make([]any, 0, 2*len(ids)+1)
	b.WriteString(`UPDATE links SET position = CASE id`)
	for i, id := range ids {
		b.WriteString(` WHEN ? THEN `)
		b.WriteString(strconv.Itoa(i))
		args = append(args, id)
	}
	b.WriteString(` END WHERE owner_id = ? AND id IN (`)
	args = append(args, ownerID)
	for i, id := range ids {
		if i > 0 {
			b.WriteString(`, `)
		}
		b.WriteString(`?`)
		args = append(args, id)
	}
	b.WriteString(`)`)

	res, err := tx.ExecContext(ctx, s.q(b.String()), args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if int(n) != len(ids) {
		return fmt.Errorf("assign positions: updated %d of %d links", n, len(ids))
	}
	return nil
}

func isPermutation(current, proposed []string) bool {
	if len(current) != len(proposed) {
		return false
	}
	remaining := make(map[string]struct{}, len(current))
	for _, id := range current {
		remaining[id] = struct{}{}
	}
	for _, id := range proposed {
		if _, ok := remaining[id]; !ok {
			return false
		}
		delete(remaining, id)
	}
	return true
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLink(row rowScanner) (*domain.LinkItem, error) {
	var l domain.LinkItem
	var icon string
	var createdAt, updatedAt int64
	if err := row.Scan(&l.ID, &l.OwnerID, &l.Title, &l.Target, &l.Position, &icon, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	l.Icon = domain.ParseIcon(icon)
	l.CreatedAt = fromMillis(createdAt)
	l.UpdatedAt = fromMillis(updatedAt)
	return &l, nil
}
