package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/michaelcoll/card-collection-price-tracker/internal/models"
)

func TestImportCollection_StoresCardsAndNewSets(t *testing.T) {
	ctx := context.Background()
	ownership := new(MockOwnershipStore)
	setNames := new(MockSetNameStore)
	svc := NewImportService(ownership, setNames)

	csv := collectionCSV(
		"bulk,binder,Goblin Boarders,FDN,Foundations,87,normal,common,3,101506,4409a063-bf2a-4a49-803e-3ce6bd474353,0.08,false,false,near_mint,fr,EUR",
		"bulk,binder,Repeal,GPT,Guildpact,32,normal,common,2,27563,9e7dd929-4bba-46a6-86c9-b8ed853eb721,0.17,false,false,near_mint,fr,EUR",
		`bulk,binder,"Dwynen, Gilt-Leaf Daen",FDN,Foundations,217,foil,uncommon,2,100086,01c00d7b-7fac-4f8c-a1ea-de2cf4d06627,0.2,false,false,near_mint,en,EUR`,
	)

	setNames.On("Exists", ctx, models.SetCode("FDN")).Return(false, nil).Once()
	setNames.On("Save", ctx, models.SetName{Code: "FDN", Name: "Foundations"}).Return(nil).Once()
	setNames.On("Exists", ctx, models.SetCode("GPT")).Return(true, nil).Once()
	ownership.On("ReplaceAll", ctx, models.UserID("alice"), mock.MatchedBy(func(cards []models.Card) bool {
		return len(cards) == 3 && cards[2].Name == "Dwynen, Gilt-Leaf Daen"
	})).Return(nil).Once()

	result, err := svc.ImportCollection(ctx, "alice", csv)
	require.NoError(t, err)
	assert.Equal(t, models.ImportResult{User: "alice", Cards: 3, TotalCopies: 7, NewSets: 1}, result)

	ownership.AssertExpectations(t)
	setNames.AssertExpectations(t)
}

func TestImportCollection_InvalidInputWritesNothing(t *testing.T) {
	ctx := context.Background()
	ownership := new(MockOwnershipStore)
	setNames := new(MockSetNameStore)
	svc := NewImportService(ownership, setNames)

	csv := collectionCSV(
		"bulk,binder,Goblin Boarders,FDN,Foundations,87,normal,common,3,101506,4409a063-bf2a-4a49-803e-3ce6bd474353,0.08,false,false,near_mint,fr,EUR",
		"bulk,binder,Repeal,GPT,Guildpact,32,normal,common,NOT_VALID_NUMBER,27563,9e7dd929-4bba-46a6-86c9-b8ed853eb721,0.17,false,false,near_mint,fr,EUR",
	)

	_, err := svc.ImportCollection(ctx, "alice", csv)
	require.Error(t, err)
	assert.True(t, models.IsImportError(err))
	assert.EqualError(t, err, "Line 2: invalid quantity 'NOT_VALID_NUMBER' (must be a valid value)")

	ownership.AssertNotCalled(t, "ReplaceAll", mock.Anything, mock.Anything, mock.Anything)
	setNames.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestImportCollection_StoreFailureIsWrapped(t *testing.T) {
	ctx := context.Background()
	ownership := new(MockOwnershipStore)
	setNames := new(MockSetNameStore)
	svc := NewImportService(ownership, setNames)

	boom := errors.New("disk full")
	setNames.On("Exists", ctx, models.SetCode("FDN")).Return(true, nil)
	ownership.On("ReplaceAll", ctx, models.UserID("bob"), mock.Anything).Return(boom)

	csv := collectionCSV("bulk,binder,Goblin Boarders,FDN,Foundations,87,normal,common,3,101506,,0.08,false,false,near_mint,fr,EUR")
	_, err := svc.ImportCollection(ctx, "bob", csv)

	require.ErrorIs(t, err, boom)
	assert.False(t, models.IsImportError(err))
}

func TestCollection(t *testing.T) {
	ctx := context.Background()
	ownership := new(MockOwnershipStore)
	svc := NewImportService(ownership, new(MockSetNameStore))

	cards := []models.Card{{Name: "Repeal", Quantity: 2}}
	ownership.On("OwnedCards", ctx, models.UserID("alice")).Return(cards, nil)

	got, err := svc.Collection(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, cards, got)
}
