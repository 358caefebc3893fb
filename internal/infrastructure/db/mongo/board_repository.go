package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hyceate/moody-sub000/internal/core/domain"
	"github.com/hyceate/moody-sub000/internal/core/ports"
)

// BoardRepository implements ports.BoardRepository using MongoDB.
type BoardRepository struct {
	col *mongo.Collection
}

func NewBoardRepository(db *mongo.Database) *BoardRepository {
	return &BoardRepository{col: db.Collection(collectionBoards)}
}

func (r *BoardRepository) Create(ctx context.Context, b *domain.Board) (*domain.Board, error) {
	doc, err := toBoardDoc(b)
	if err != nil {
		return nil, domain.Invalid("malformed board reference")
	}
	if err := r.insert(ctx, doc); err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

// Restore re-inserts b with its original id.
func (r *BoardRepository) Restore(ctx context.Context, b *domain.Board) error {
	doc, err := toBoardDoc(b)
	if err != nil {
		return domain.Invalid("malformed board reference")
	}
	return r.insert(ctx, doc)
}

func (r *BoardRepository) insert(ctx context.Context, doc boardDoc) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConflict
		}
		return domain.WrapStore("insert board", err)
	}
	return nil
}

func (r *BoardRepository) FindByID(ctx context.Context, id string, vis domain.Visibility) (*domain.Board, error) {
	o, err := oid(id)
	if err != nil {
		return nil, domain.ErrBoardNotFound
	}
	return r.findOne(ctx, and(bson.M{"_id": o}, visibilityFilter(vis)))
}

func (r *BoardRepository) FindByTitle(ctx context.Context, userID, title string) (*domain.Board, error) {
	user, err := oid(userID)
	if err != nil {
		return nil, domain.ErrBoardNotFound
	}
	return r.findOne(ctx, bson.M{"user": user, "title": title})
}

func (r *BoardRepository) findOne(ctx context.Context, filter bson.M) (*domain.Board, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc boardDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrBoardNotFound
		}
		return nil, domain.WrapStore("find board", err)
	}
	return doc.toDomain(), nil
}

// List returns matching boards, oldest first.
func (r *BoardRepository) List(ctx context.Context, f ports.BoardFilter) ([]*domain.Board, error) {
	filter := bson.M{}
	if f.UserID != "" {
		user, err := oid(f.UserID)
		if err != nil {
			return []*domain.Board{}, nil
		}
		filter["user"] = user
	}
	if f.PinID != "" {
		pin, err := oid(f.PinID)
		if err != nil {
			return []*domain.Board{}, nil
		}
		filter["pins.pin"] = pin
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, and(filter, visibilityFilter(f.Visibility)), opts)
	if err != nil {
		return nil, domain.WrapStore("list boards", err)
	}
	var docs []boardDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, domain.WrapStore("decode boards", err)
	}
	out := make([]*domain.Board, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *BoardRepository) Update(ctx context.Context, id string, patch domain.BoardPatch) (*domain.Board, error) {
	o, err := oid(id)
	if err != nil {
		return nil, domain.ErrBoardNotFound
	}
	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.IsPrivate != nil {
		set["is_private"] = *patch.IsPrivate
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc boardDoc
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": o}, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrBoardNotFound
		}
		return nil, domain.WrapStore("update board", err)
	}
	return doc.toDomain(), nil
}

func (r *BoardRepository) Delete(ctx context.Context, id string) error {
	o, err := oid(id)
	if err != nil {
		return domain.ErrBoardNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": o})
	if err != nil {
		return domain.WrapStore("delete board", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrBoardNotFound
	}
	return nil
}

// AddPin pushes ref only when the board does not reference the pin yet. The
// $ne guard and the $push are one atomic document update, so concurrent saves
// of the same pair append once.
func (r *BoardRepository) AddPin(ctx context.Context, boardID string, ref domain.BoardPin) (bool, error) {
	board, err := oid(boardID)
	if err != nil {
		return false, domain.ErrBoardNotFound
	}
	pin, err := oid(ref.PinID)
	if err != nil {
		return false, domain.ErrPinNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": board, "pins.pin": bson.M{"$ne": pin}},
		bson.M{"$push": bson.M{"pins": boardPinDoc{Pin: pin, SavedAt: ref.SavedAt}}},
	)
	if err != nil {
		return false, domain.WrapStore("add pin to board", err)
	}
	if res.ModifiedCount > 0 {
		return true, nil
	}
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": board})
	if err != nil {
		return false, domain.WrapStore("count boards", err)
	}
	if n == 0 {
		return false, domain.ErrBoardNotFound
	}
	return false, nil
}

func (r *BoardRepository) RemovePin(ctx context.Context, boardID, pinID string) (bool, error) {
	board, err := oid(boardID)
	if err != nil {
		return false, nil
	}
	pin, err := oid(pinID)
	if err != nil {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": board}, bson.M{"$pull": bson.M{"pins": bson.M{"pin": pin}}})
	if err != nil {
		return false, domain.WrapStore("remove pin from board", err)
	}
	return res.ModifiedCount > 0, nil
}

func (r *BoardRepository) RemovePinEverywhere(ctx context.Context, pinID string) (int64, error) {
	pin, err := oid(pinID)
	if err != nil {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateMany(ctx, bson.M{"pins.pin": pin}, bson.M{"$pull": bson.M{"pins": bson.M{"pin": pin}}})
	if err != nil {
		return 0, domain.WrapStore("remove pin from boards", err)
	}
	return res.ModifiedCount, nil
}
