package db

import (
	"context"
	"database/sql"
	"fmt"

	"subasta-auction-service/internal/domain/auction"
	"subasta-auction-service/internal/domain/shared"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// AuctionRepository persists auction aggregates. The aggregate spans two
// tables: the subastas row and its 100 subasta_puestos rows. Every write
// goes through a transaction so the aggregate stays consistent.
type AuctionRepository struct {
	conn *Connection
}

// NewAuctionRepository creates a new auction repository
func NewAuctionRepository(conn *Connection) *AuctionRepository {
	return &AuctionRepository{conn: conn}
}

// Create persists a new auction together with all of its slots
func (r *AuctionRepository) Create(ctx context.Context, a *auction.Auction) error {
	return r.conn.ExecuteTransaction(func(tx *sql.Tx) error {
		query := `
			INSERT INTO subastas (id, titulo, descripcion, precio_inicial, precio_actual, fecha_inicio, fecha_fin, estado, imagen_url, puesto_ganador, puja_ganadora, ganador_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`

		_, err := tx.ExecContext(ctx, query,
			a.ID,
			a.Title,
			a.Description,
			a.BasePrice,
			a.CurrentPrice,
			a.StartTime,
			a.EndTime,
			a.Status,
			nullString(a.ImageURL),
			a.WinningSlot,
			a.WinningBid,
			a.WinnerID,
		)
		if err != nil {
			return fmt.Errorf("failed to create auction: %w", err)
		}

		// Bulk-load the 100 slot rows with COPY
		stmt, err := tx.PrepareContext(ctx, pq.CopyIn("subasta_puestos", "subasta_id", "numero", "ocupado_por", "monto_puja", "fecha_ocupacion"))
		if err != nil {
			return fmt.Errorf("failed to prepare slot copy: %w", err)
		}

		for i := range a.Slots {
			slot := &a.Slots[i]
			if _, err := stmt.ExecContext(ctx, a.ID, slot.Number, slot.OccupiedBy, slot.BidAmount, slot.OccupiedAt); err != nil {
				stmt.Close()
				return fmt.Errorf("failed to copy slot %d: %w", slot.Number, err)
			}
		}

		if _, err := stmt.ExecContext(ctx); err != nil {
			stmt.Close()
			return fmt.Errorf("failed to flush slot copy: %w", err)
		}

		return stmt.Close()
	})
}

// GetByID retrieves an auction aggregate by ID
func (r *AuctionRepository) GetByID(ctx context.Context, id uuid.UUID) (*auction.Auction, error) {
	query := `
		SELECT id, titulo, descripcion, precio_inicial, precio_actual, fecha_inicio, fecha_fin, estado, imagen_url, puesto_ganador, puja_ganadora, ganador_id
		FROM subastas
		WHERE id = $1
	`

	a, err := scanAuction(r.conn.GetDB().QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	slots, err := r.loadSlots(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Slots = slots

	return a, nil
}

// List retrieves all auctions ordered by start time descending
func (r *AuctionRepository) List(ctx context.Context) ([]*auction.Auction, error) {
	query := `
		SELECT id, titulo, descripcion, precio_inicial, precio_actual, fecha_inicio, fecha_fin, estado, imagen_url, puesto_ganador, puja_ganadora, ganador_id
		FROM subastas
		ORDER BY fecha_inicio DESC
	`

	rows, err := r.conn.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list auctions: %w", err)
	}
	defer rows.Close()

	var auctions []*auction.Auction
	byID := make(map[uuid.UUID]*auction.Auction)

	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		auctions = append(auctions, a)
		byID[a.ID] = a
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating auctions: %w", err)
	}

	if len(auctions) == 0 {
		return auctions, nil
	}

	// Load every slot row in one pass and attach them to their auctions
	slotRows, err := r.conn.GetDB().QueryContext(ctx, `
		SELECT subasta_id, numero, ocupado_por, monto_puja, fecha_ocupacion
		FROM subasta_puestos
		ORDER BY subasta_id, numero ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load slots: %w", err)
	}
	defer slotRows.Close()

	for slotRows.Next() {
		var (
			auctionID  uuid.UUID
			slot       auction.Slot
			occupiedBy sql.NullString
			occupiedAt sql.NullTime
		)
		if err := slotRows.Scan(&auctionID, &slot.Number, &occupiedBy, &slot.BidAmount, &occupiedAt); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		if occupiedBy.Valid {
			slot.OccupiedBy = &occupiedBy.String
		}
		if occupiedAt.Valid {
			slot.OccupiedAt = &occupiedAt.Time
		}

		a, ok := byID[auctionID]
		if !ok {
			continue
		}
		if a.Slots == nil {
			a.Slots = make([]auction.Slot, 0, auction.NumSlots)
		}
		a.Slots = append(a.Slots, slot)
	}

	if err = slotRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating slots: %w", err)
	}

	return auctions, nil
}

// Save persists the full aggregate state of an existing auction. Slot rows
// are upserted; vacant slots never change after creation so only occupied
// ones are written.
func (r *AuctionRepository) Save(ctx context.Context, a *auction.Auction) error {
	return r.conn.ExecuteTransaction(func(tx *sql.Tx) error {
		query := `
			UPDATE subastas
			SET precio_actual = $2, estado = $3, puesto_ganador = $4, puja_ganadora = $5, ganador_id = $6
			WHERE id = $1
		`

		result, err := tx.ExecContext(ctx, query,
			a.ID,
			a.CurrentPrice,
			a.Status,
			a.WinningSlot,
			a.WinningBid,
			a.WinnerID,
		)
		if err != nil {
			return fmt.Errorf("failed to update auction: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return shared.ErrAuctionNotFound
		}

		slotQuery := `
			INSERT INTO subasta_puestos (subasta_id, numero, ocupado_por, monto_puja, fecha_ocupacion)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (subasta_id, numero)
			DO UPDATE SET ocupado_por = EXCLUDED.ocupado_por, monto_puja = EXCLUDED.monto_puja, fecha_ocupacion = EXCLUDED.fecha_ocupacion
		`

		for i := range a.Slots {
			slot := &a.Slots[i]
			if !slot.IsOccupied() {
				continue
			}
			if _, err := tx.ExecContext(ctx, slotQuery, a.ID, slot.Number, slot.OccupiedBy, slot.BidAmount, slot.OccupiedAt); err != nil {
				return fmt.Errorf("failed to save slot %d: %w", slot.Number, err)
			}
		}

		return nil
	})
}

// Delete removes an auction and its slots
func (r *AuctionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.conn.ExecuteTransaction(func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM subasta_puestos WHERE subasta_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete slots: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM subastas WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete auction: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return shared.ErrAuctionNotFound
		}

		return nil
	})
}

// loadSlots reads the slot rows of one auction in ascending number order
func (r *AuctionRepository) loadSlots(ctx context.Context, auctionID uuid.UUID) ([]auction.Slot, error) {
	rows, err := r.conn.GetDB().QueryContext(ctx, `
		SELECT numero, ocupado_por, monto_puja, fecha_ocupacion
		FROM subasta_puestos
		WHERE subasta_id = $1
		ORDER BY numero ASC
	`, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load slots: %w", err)
	}
	defer rows.Close()

	slots := make([]auction.Slot, 0, auction.NumSlots)
	for rows.Next() {
		var (
			slot       auction.Slot
			occupiedBy sql.NullString
			occupiedAt sql.NullTime
		)
		if err := rows.Scan(&slot.Number, &occupiedBy, &slot.BidAmount, &occupiedAt); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		if occupiedBy.Valid {
			slot.OccupiedBy = &occupiedBy.String
		}
		if occupiedAt.Valid {
			slot.OccupiedAt = &occupiedAt.Time
		}
		slots = append(slots, slot)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating slots: %w", err)
	}

	if len(slots) != auction.NumSlots {
		return nil, fmt.Errorf("auction %s has %d slot rows, expected %d", auctionID, len(slots), auction.NumSlots)
	}

	return slots, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanAuction reads one subastas row, without its slots
func scanAuction(row rowScanner) (*auction.Auction, error) {
	var (
		a           auction.Auction
		imageURL    sql.NullString
		winningSlot sql.NullInt64
		winningBid  sql.NullFloat64
		winnerID    sql.NullString
	)

	err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Description,
		&a.BasePrice,
		&a.CurrentPrice,
		&a.StartTime,
		&a.EndTime,
		&a.Status,
		&imageURL,
		&winningSlot,
		&winningBid,
		&winnerID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, shared.ErrAuctionNotFound
		}
		return nil, fmt.Errorf("failed to scan auction: %w", err)
	}

	if imageURL.Valid {
		a.ImageURL = imageURL.String
	}
	if winningSlot.Valid {
		number := int(winningSlot.Int64)
		a.WinningSlot = &number
	}
	if winningBid.Valid {
		amount := winningBid.Float64
		a.WinningBid = &amount
	}
	if winnerID.Valid {
		a.WinnerID = &winnerID.String
	}

	return &a, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
