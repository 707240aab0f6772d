//go:build integration
// +build integration

package product

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const skipIntegration = "PRODUCT_SVC_SKIP_INTEGRATION_TESTS"

type PostgresStoreSuite struct {
	suite.Suite
	ctx   context.Context
	pg    *postgres.PostgresContainer
	db    *sql.DB
	store *PostgresStore
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()

	var err error
	s.pg, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase("products"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	s.Require().NoError(err, "run postgres container")

	url, err := s.pg.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.Require().NoError(Migrate(url))
	// second run is a no-op
	s.Require().NoError(Migrate(url))

	s.db, err = sql.Open("pgx", url)
	s.Require().NoError(err)

	s.store = NewPostgresStore(s.db)
	s.Require().NoError(s.store.Ping(s.ctx))
}

func (s *PostgresStoreSuite) TearDownSuite() {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.pg != nil {
		if err := s.pg.Terminate(s.ctx); err != nil {
			s.T().Logf("terminate postgres container: %v", err)
		}
	}
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.db.ExecContext(s.ctx, "TRUNCATE TABLE products RESTART IDENTITY")
	s.Require().NoError(err)
}

func TestPostgresStore(t *testing.T) {
	if os.Getenv(skipIntegration) == "1" {
		t.Skip("skipping integration tests: " + skipIntegration + "=1")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) TestAppendListOrder() {
	a := NewProduct("A", "first", 10.99)
	b := NewProduct("B", "second", 0.01)
	c := NewProduct("C", "third", 123456.789)

	for _, p := range []Product{b, a, c} {
		s.Require().NoError(s.store.Append(s.ctx, p))
	}

	all, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Equal([]Product{b, a, c}, all)

	n, err := s.store.Len(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, n)
}

func (s *PostgresStoreSuite) TestEmptyList() {
	all, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *PostgresStoreSuite) TestDuplicateID() {
	p := NewProduct("A", "first", 1)
	s.Require().NoError(s.store.Append(s.ctx, p))
	s.ErrorIs(s.store.Append(s.ctx, p), ErrDuplicateID)
}

func (s *PostgresStoreSuite) TestGet() {
	p := NewProduct("A", "first", 19.99)
	s.Require().NoError(s.store.Append(s.ctx, p))

	got, ok, err := s.store.Get(s.ctx, p.ID)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(p, got)

	_, ok, err = s.store.Get(s.ctx, "non-existent-id")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *PostgresStoreSuite) TestUpdate() {
	p := NewProduct("Product 1", "Description 1", 10.99)
	s.Require().NoError(s.store.Append(s.ctx, p))

	got, err := s.store.Update(s.ctx, p.ID, func(cur Product) (Product, error) {
		cur.ID = "ignored"
		cur.Name = "Updated Product"
		cur.Price = 15.99
		return cur, nil
	})
	s.Require().NoError(err)

	want := Product{ID: p.ID, Name: "Updated Product", Description: "Description 1", Price: 15.99}
	s.Equal(want, got)

	stored, _, err := s.store.Get(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(want, stored)
}

func (s *PostgresStoreSuite) TestUpdateMergeErrorRollsBack() {
	p := NewProduct("Product 1", "Description 1", 10.99)
	s.Require().NoError(s.store.Append(s.ctx, p))

	boom := errors.New("boom")
	_, err := s.store.Update(s.ctx, p.ID, func(Product) (Product, error) {
		return Product{}, boom
	})
	s.ErrorIs(err, boom)

	stored, _, err := s.store.Get(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(p, stored)
}

func (s *PostgresStoreSuite) TestUpdateMissing() {
	_, err := s.store.Update(s.ctx, "missing", func(cur Product) (Product, error) {
		s.Fail("merge must not run for a missing id")
		return cur, nil
	})
	s.ErrorIs(err, ErrNotFound)
}

func (s *PostgresStoreSuite) TestConcurrentUpdatesSerialize() {
	p := NewProduct("Counter", "", 1)
	s.Require().NoError(s.store.Append(s.ctx, p))

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Update(s.ctx, p.ID, func(cur Product) (Product, error) {
				cur.Price++
				return cur, nil
			})
			s.NoError(err)
		}()
	}
	wg.Wait()

	stored, _, err := s.store.Get(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(float64(1+workers), stored.Price)
}

func (s *PostgresStoreSuite) TestDelete() {
	keep := NewProduct("Keep", "", 1)
	gone := NewProduct("Gone", "", 2)
	s.Require().NoError(s.store.Append(s.ctx, keep))
	s.Require().NoError(s.store.Append(s.ctx, gone))

	got, err := s.store.Delete(s.ctx, gone.ID)
	s.Require().NoError(err)
	s.Equal(gone, got)

	all, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Equal([]Product{keep}, all)

	_, err = s.store.Delete(s.ctx, gone.ID)
	s.ErrorIs(err, ErrNotFound)
}
