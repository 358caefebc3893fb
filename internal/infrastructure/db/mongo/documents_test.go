package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hyceate/moody-sub000/internal/core/domain"
)

func TestVisibilityFilter(t *testing.T) {
	assert.Nil(t, visibilityFilter(domain.Unrestricted))
	assert.Equal(t, bson.M{"is_private": false}, visibilityFilter(domain.VisibleTo("")))
	assert.Equal(t, bson.M{"is_private": false}, visibilityFilter(domain.VisibleTo("not-an-id")))

	viewer := primitive.NewObjectID()
	got := visibilityFilter(domain.VisibleTo(viewer.Hex()))
	assert.Equal(t, bson.M{"$or": bson.A{
		bson.M{"is_private": false},
		bson.M{"user": viewer},
	}}, got)
}

func TestAnd(t *testing.T) {
	a := bson.M{"a": 1}
	b := bson.M{"b": 2}

	assert.Equal(t, bson.M{}, and(nil, bson.M{}))
	assert.Equal(t, a, and(a, nil))
	assert.Equal(t, bson.M{"$and": bson.A{a, b}}, and(a, nil, b))
}

func TestOID(t *testing.T) {
	id := primitive.NewObjectID()

	got, err := oid("  " + id.Hex() + " ")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = oid("nope")
	assert.ErrorIs(t, err, errInvalidID)

	fresh, err := oidOrNew("")
	require.NoError(t, err)
	assert.False(t, fresh.IsZero())

	assert.Len(t, oids([]string{id.Hex(), "bad"}), 1)
}

func TestPinDocRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	pin := &domain.Pin{
		ID:        primitive.NewObjectID().Hex(),
		UserID:    primitive.NewObjectID().Hex(),
		Title:     "sunset",
		ImagePath: "pins/u/a.jpg",
		Tags:      []string{"sky"},
		IsPrivate: true,
		Comments:  []string{primitive.NewObjectID().Hex()},
		Boards:    []domain.Membership{{BoardID: primitive.NewObjectID().Hex(), SavedAt: now}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	doc, err := toPinDoc(pin)
	require.NoError(t, err)
	assert.Equal(t, pin, doc.toDomain())
}

func TestBoardDocRejectsMalformedOwner(t *testing.T) {
	_, err := toBoardDoc(&domain.Board{UserID: "someone"})
	assert.Error(t, err)
}
