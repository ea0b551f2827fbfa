package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dotvest/internal/model"
)

// Store provides Postgres persistence for settlement events.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// PutEventBatch inserts events, skipping ids already stored so a
// resumed run can safely replay its tail.
func (s *Store) PutEventBatch(events []model.EventRecord) error {
	return s.InsertEvents(context.Background(), events)
}

// InsertEvents writes a batch of event records.
func (s *Store) InsertEvents(ctx context.Context, events []model.EventRecord) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, ev := range events {
		pool, partyA, partyB, amountA, amountB, extra := flatten(ev)
		batch.Queue(`
			INSERT INTO settlement_events (
				id, seq, event_type, pool_address, party_a, party_b,
				amount_a, amount_b, extra, emitted_at, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now())
			ON CONFLICT (id) DO NOTHING
		`,
			ev.ID,
			int64(ev.Seq),
			ev.Type,
			pool,
			partyA,
			partyB,
			amountA,
			amountB,
			extra,
			ev.EmittedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// flatten projects the typed payload onto the common column set.
func flatten(ev model.EventRecord) (pool, partyA, partyB, amountA, amountB, extra string) {
	switch {
	case ev.PoolCreated != nil:
		d := ev.PoolCreated
		return d.Pool, d.TokenA, d.TokenB, "", "", fmt.Sprintf("%d", d.FeeNumerator)
	case ev.LiquidityAdded != nil:
		d := ev.LiquidityAdded
		return d.Pool, d.Provider, "", d.AmountA, d.AmountB, d.SharesMinted
	case ev.LiquidityRemoved != nil:
		d := ev.LiquidityRemoved
		return d.Pool, d.Provider, "", d.AmountA, d.AmountB, d.SharesBurned
	case ev.Swap != nil:
		d := ev.Swap
		return d.Pool, d.TokenIn, d.TokenOut, d.AmountIn, d.AmountOut, d.Trader
	}
	return "", "", "", "", "", ""
}
