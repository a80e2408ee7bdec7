//go:build integration

package offboarding_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"offboard/internal/offboarding"
	"offboard/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *offboarding.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = offboarding.NewPostgresStore(s.pg.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) TearDownSuite() {
	s.pg.Terminate(context.Background())
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.pg.DB.Exec("TRUNCATE offboarding_records CASCADE")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestSaveAndHistory() {
	ctx := context.Background()
	actorID := uuid.New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	saved, err := s.store.Save(ctx, offboarding.Record{
		ActorID:        &actorID,
		Username:       "Alice Doe",
		Registration:   "12345",
		PerformedBy:    "admin",
		OffboardedAt:   base,
		RevokedSystems: []string{"Rede", "InTouch", "Acesso"},
	})
	s.Require().NoError(err)
	s.NotEqual(uuid.Nil, saved.ID)

	records, total, err := s.store.History(ctx, offboarding.HistoryFilters{Page: 1, Limit: 20})
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Require().Len(records, 1)

	got := records[0]
	s.Equal(saved.ID, got.ID)
	s.Require().NotNil(got.ActorID)
	s.Equal(actorID, *got.ActorID)
	s.Equal("Alice Doe", got.Username)
	s.Equal("12345", got.Registration)
	s.Equal("admin", got.PerformedBy)
	s.Equal([]string{"Rede", "InTouch", "Acesso"}, got.RevokedSystems)
}

func (s *PostgresStoreSuite) TestSaveAssignsDefaults() {
	ctx := context.Background()

	saved, err := s.store.Save(ctx, offboarding.Record{
		Username:     "Bob",
		Registration: "67890",
		PerformedBy:  "System",
	})
	s.Require().NoError(err)
	s.NotEqual(uuid.Nil, saved.ID)
	s.False(saved.OffboardedAt.IsZero())

	records, _, err := s.store.History(ctx, offboarding.HistoryFilters{Page: 1, Limit: 20})
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Nil(records[0].ActorID)
	s.Empty(records[0].RevokedSystems)
}

func (s *PostgresStoreSuite) TestHistoryFiltersByRegistration() {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i, reg := range []string{"11111", "22222", "11111"} {
		_, err := s.store.Save(ctx, offboarding.Record{
			Username:       "User",
			Registration:   reg,
			PerformedBy:    "admin",
			OffboardedAt:   base.Add(time.Duration(i) * time.Hour),
			RevokedSystems: []string{"Rede"},
		})
		s.Require().NoError(err)
	}

	records, total, err := s.store.History(ctx, offboarding.HistoryFilters{Registration: "11111", Page: 1, Limit: 20})
	s.Require().NoError(err)
	s.Equal(2, total)
	s.Require().Len(records, 2)
	s.True(records[0].OffboardedAt.After(records[1].OffboardedAt))
}

func (s *PostgresStoreSuite) TestHistoryPaginates() {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, err := s.store.Save(ctx, offboarding.Record{
			Username:     "User",
			Registration: "12345",
			PerformedBy:  "admin",
			OffboardedAt: base.Add(time.Duration(i) * time.Hour),
		})
		s.Require().NoError(err)
	}

	records, total, err := s.store.History(ctx, offboarding.HistoryFilters{Page: 2, Limit: 2})
	s.Require().NoError(err)
	s.Equal(5, total)
	s.Len(records, 2)
}
