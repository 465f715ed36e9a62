package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"bloodlink/internal/bloodtype/models"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/platform/sentinel"
	txcontext "bloodlink/pkg/platform/tx"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) newType(group string) *models.BloodType {
	bt, err := models.NewBloodType(domain.BloodTypeID(uuid.New()), group, "", time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(s.ctx, bt))
	return bt
}

func (s *InMemoryStoreSuite) TestCreateRejectsDuplicateGroup() {
	s.newType("A+")
	dup, err := models.NewBloodType(domain.BloodTypeID(uuid.New()), "a+", "", time.Now())
	s.Require().NoError(err)
	s.ErrorIs(s.store.Create(s.ctx, dup), sentinel.ErrAlreadyUsed)
}

func (s *InMemoryStoreSuite) TestFind() {
	bt := s.newType("O-")

	found, err := s.store.FindByID(s.ctx, bt.ID)
	s.Require().NoError(err)
	s.Equal("O-", found.Group)

	found, err = s.store.FindByGroup(s.ctx, "O-")
	s.Require().NoError(err)
	s.Equal(bt.ID, found.ID)

	_, err = s.store.FindByID(s.ctx, domain.BloodTypeID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestListOrdersByGroup() {
	s.newType("O+")
	s.newType("A-")
	s.newType("AB+")

	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal([]string{"A-", "AB+", "O+"}, []string{list[0].Group, list[1].Group, list[2].Group})
}

func (s *InMemoryStoreSuite) TestUpsertRuleOverwrites() {
	donor := s.newType("O-")
	recipient := s.newType("A+")
	rule := &models.CompatibilityRule{ID: uuid.New(), DonorTypeID: donor.ID, RecipientTypeID: recipient.ID, Compatible: true}
	s.Require().NoError(s.store.UpsertRule(s.ctx, rule))

	rule.Compatible = false
	s.Require().NoError(s.store.UpsertRule(s.ctx, rule))

	rules, err := s.store.ListRulesForRecipient(s.ctx, recipient.ID)
	s.Require().NoError(err)
	s.Require().Len(rules, 1)
	s.False(rules[0].Compatible)
}

func (s *InMemoryStoreSuite) TestUpsertRuleUnknownType() {
	donor := s.newType("O-")
	err := s.store.UpsertRule(s.ctx, &models.CompatibilityRule{
		ID: uuid.New(), DonorTypeID: donor.ID, RecipientTypeID: domain.BloodTypeID(uuid.New()),
	})
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestUpdateKeepsGroup() {
	bt := s.newType("B-")
	s.Require().NoError(s.store.Update(s.ctx, &models.BloodType{ID: bt.ID, Group: "O+", Description: "rare"}))

	found, err := s.store.FindByID(s.ctx, bt.ID)
	s.Require().NoError(err)
	s.Equal("B-", found.Group)
	s.Equal("rare", found.Description)

	s.ErrorIs(s.store.Update(s.ctx, &models.BloodType{ID: domain.BloodTypeID(uuid.New())}), sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestDeleteRemovesRules() {
	donor := s.newType("O-")
	recipient := s.newType("A+")
	s.Require().NoError(s.store.UpsertRule(s.ctx, &models.CompatibilityRule{
		ID: uuid.New(), DonorTypeID: donor.ID, RecipientTypeID: recipient.ID, Compatible: true,
	}))

	s.Require().NoError(s.store.Delete(s.ctx, donor.ID))
	_, err := s.store.FindByID(s.ctx, donor.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	rules, err := s.store.ListRulesForRecipient(s.ctx, recipient.ID)
	s.Require().NoError(err)
	s.Empty(rules)

	s.ErrorIs(s.store.Delete(s.ctx, donor.ID), sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestWritesRollBackWithUnitOfWork() {
	donor := s.newType("O-")
	recipient := s.newType("A+")
	rule := &models.CompatibilityRule{ID: uuid.New(), DonorTypeID: donor.ID, RecipientTypeID: recipient.ID, Compatible: true}
	s.Require().NoError(s.store.UpsertRule(s.ctx, rule))

	boom := errors.New("boom")
	created, err := models.NewBloodType(domain.BloodTypeID(uuid.New()), "AB-", "", time.Now())
	s.Require().NoError(err)
	err = txcontext.NewLockRunner().RunInTx(s.ctx, func(ctx context.Context) error {
		s.Require().NoError(s.store.Create(ctx, created))
		s.Require().NoError(s.store.UpsertRule(ctx, &models.CompatibilityRule{
			ID: uuid.New(), DonorTypeID: donor.ID, RecipientTypeID: recipient.ID, Compatible: false,
		}))
		s.Require().NoError(s.store.Update(ctx, &models.BloodType{ID: recipient.ID, Description: "changed"}))
		s.Require().NoError(s.store.Delete(ctx, donor.ID))
		return boom
	})
	s.ErrorIs(err, boom)

	_, err = s.store.FindByID(s.ctx, created.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	found, err := s.store.FindByID(s.ctx, recipient.ID)
	s.Require().NoError(err)
	s.Empty(found.Description)
	rules, err := s.store.ListRulesForRecipient(s.ctx, recipient.ID)
	s.Require().NoError(err)
	s.Require().Len(rules, 1)
	s.Equal(donor.ID, rules[0].DonorTypeID)
	s.True(rules[0].Compatible)
}

func TestSeedBuildsMatrix(t *testing.T) {
	ctx := context.Background()
	st := NewInMemory()

	created, err := Seed(ctx, st, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 8, created)

	abPos, err := st.FindByGroup(ctx, "AB+")
	require.NoError(t, err)
	rules, err := st.ListRulesForRecipient(ctx, abPos.ID)
	require.NoError(t, err)
	compat := models.CompatibilityFromRules(abPos.ID, rules)
	assert.Equal(t, 8, compat.RuleCount)
	assert.Len(t, compat.DonorTypeIDs, 8, "AB+ receives from everyone")

	oNeg, err := st.FindByGroup(ctx, "O-")
	require.NoError(t, err)
	rules, err = st.ListRulesForRecipient(ctx, oNeg.ID)
	require.NoError(t, err)
	compat = models.CompatibilityFromRules(oNeg.ID, rules)
	assert.Equal(t, []domain.BloodTypeID{oNeg.ID}, compat.DonorTypeIDs, "O- receives only from O-")

	again, err := Seed(ctx, st, time.Now())
	require.NoError(t, err)
	assert.Zero(t, again)
}
