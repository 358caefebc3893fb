package mongo

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hyceate/moody-sub000/internal/core/domain"
	"github.com/hyceate/moody-sub000/internal/core/ports"
)

// PinRepository implements ports.PinRepository using MongoDB.
type PinRepository struct {
	col *mongo.Collection
}

func NewPinRepository(db *mongo.Database) *PinRepository {
	return &PinRepository{col: db.Collection(collectionPins)}
}

func (r *PinRepository) Create(ctx context.Context, p *domain.Pin) (*domain.Pin, error) {
	doc, err := toPinDoc(p)
	if err != nil {
		return nil, domain.Invalid("malformed pin reference")
	}
	if err := r.insert(ctx, doc); err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *PinRepository) Restore(ctx context.Context, p *domain.Pin) error {
	doc, err := toPinDoc(p)
	if err != nil {
		return domain.Invalid("malformed pin reference")
	}
	return r.insert(ctx, doc)
}

func (r *PinRepository) insert(ctx context.Context, doc pinDoc) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConflict
		}
		return domain.WrapStore("insert pin", err)
	}
	return nil
}

func (r *PinRepository) FindByID(ctx context.Context, id string, vis domain.Visibility) (*domain.Pin, error) {
	o, err := oid(id)
	if err != nil {
		return nil, domain.ErrPinNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc pinDoc
	if err := r.col.FindOne(ctx, and(bson.M{"_id": o}, visibilityFilter(vis))).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrPinNotFound
		}
		return nil, domain.WrapStore("find pin", err)
	}
	return doc.toDomain(), nil
}

// List returns matching pins, newest first. Visibility is part of the query.
func (r *PinRepository) List(ctx context.Context, f ports.PinFilter) ([]*domain.Pin, error) {
	filter := bson.M{}
	if f.UserID != "" {
		user, err := oid(f.UserID)
		if err != nil {
			return []*domain.Pin{}, nil
		}
		filter["user"] = user
	}
	if f.BoardID != "" {
		board, err := oid(f.BoardID)
		if err != nil {
			return []*domain.Pin{}, nil
		}
		filter["boards.board"] = board
	}
	if f.IDs != nil {
		filter["_id"] = bson.M{"$in": oids(f.IDs)}
	}
	if len(f.Tags) > 0 {
		filter["tags"] = bson.M{"$in": f.Tags}
	}
	var search bson.M
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		search = bson.M{"$or": bson.A{
			bson.M{"title": bson.M{"$regex": re}},
			bson.M{"description": bson.M{"$regex": re}},
		}}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if f.Offset > 0 {
		opts.SetSkip(int64(f.Offset))
	}
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, and(filter, search, visibilityFilter(f.Visibility)), opts)
	if err != nil {
		return nil, domain.WrapStore("list pins", err)
	}
	var docs []pinDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, domain.WrapStore("decode pins", err)
	}
	out := make([]*domain.Pin, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *PinRepository) Update(ctx context.Context, id string, patch domain.PinPatch) (*domain.Pin, error) {
	o, err := oid(id)
	if err != nil {
		return nil, domain.ErrPinNotFound
	}
	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Link != nil {
		set["link"] = *patch.Link
	}
	if patch.Tags != nil {
		set["tags"] = *patch.Tags
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc pinDoc
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": o}, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrPinNotFound
		}
		return nil, domain.WrapStore("update pin", err)
	}
	return doc.toDomain(), nil
}

func (r *PinRepository) SetPrivate(ctx context.Context, id string, private bool) error {
	o, err := oid(id)
	if err != nil {
		return domain.ErrPinNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": o}, bson.M{"$set": bson.M{"is_private": private}})
	if err != nil {
		return domain.WrapStore("set pin privacy", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPinNotFound
	}
	return nil
}

func (r *PinRepository) Delete(ctx context.Context, id string) error {
	o, err := oid(id)
	if err != nil {
		return domain.ErrPinNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": o})
	if err != nil {
		return domain.WrapStore("delete pin", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrPinNotFound
	}
	return nil
}

// AddBoard pushes m only when the pin holds no membership for the board yet.
func (r *PinRepository) AddBoard(ctx context.Context, pinID string, m domain.Membership) (bool, error) {
	pin, err := oid(pinID)
	if err != nil {
		return false, domain.ErrPinNotFound
	}
	board, err := oid(m.BoardID)
	if err != nil {
		return false, domain.ErrBoardNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": pin, "boards.board": bson.M{"$ne": board}},
		bson.M{"$push": bson.M{"boards": membershipDoc{Board: board, SavedAt: m.SavedAt}}},
	)
	if err != nil {
		return false, domain.WrapStore("add membership", err)
	}
	if res.ModifiedCount > 0 {
		return true, nil
	}
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": pin})
	if err != nil {
		return false, domain.WrapStore("count pins", err)
	}
	if n == 0 {
		return false, domain.ErrPinNotFound
	}
	return false, nil
}

// RemoveBoard pulls the membership and reports how many remain, read from the
// pre-image returned by the same atomic update.
func (r *PinRepository) RemoveBoard(ctx context.Context, pinID, boardID string) (bool, int, error) {
	pin, err := oid(pinID)
	if err != nil {
		return false, 0, domain.ErrPinNotFound
	}
	board, err := oid(boardID)
	if err != nil {
		board = primitive.NilObjectID
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var before struct {
		Boards []membershipDoc `bson:"boards"`
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.Before).
		SetProjection(bson.M{"boards": 1})
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": pin},
		bson.M{"$pull": bson.M{"boards": bson.M{"board": board}}},
		opts,
	).Decode(&before)
	if err != nil {
		if isNoDocuments(err) {
			return false, 0, domain.ErrPinNotFound
		}
		return false, 0, domain.WrapStore("remove membership", err)
	}

	removed := 0
	for _, m := range before.Boards {
		if m.Board == board {
			removed++
		}
	}
	return removed > 0, len(before.Boards) - removed, nil
}

func (r *PinRepository) AddComment(ctx context.Context, pinID, commentID string) error {
	pin, err := oid(pinID)
	if err != nil {
		return domain.ErrPinNotFound
	}
	comment, err := oid(commentID)
	if err != nil {
		return domain.ErrCommentNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": pin}, bson.M{"$addToSet": bson.M{"comments": comment}})
	if err != nil {
		return domain.WrapStore("add comment to pin", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPinNotFound
	}
	return nil
}

// RemoveComment is a no-op when the pin no longer exists.
func (r *PinRepository) RemoveComment(ctx context.Context, pinID, commentID string) error {
	pin, err := oid(pinID)
	if err != nil {
		return nil
	}
	comment, err := oid(commentID)
	if err != nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.UpdateOne(ctx, bson.M{"_id": pin}, bson.M{"$pull": bson.M{"comments": comment}}); err != nil {
		return domain.WrapStore("remove comment from pin", err)
	}
	return nil
}
