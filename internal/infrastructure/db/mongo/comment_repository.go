package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hyceate/moody-sub000/internal/core/domain"
)

// CommentRepository implements ports.CommentRepository using MongoDB.
type CommentRepository struct {
	col *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{col: db.Collection(collectionComments)}
}

func (r *CommentRepository) Create(ctx context.Context, c *domain.Comment) (*domain.Comment, error) {
	doc, err := toCommentDoc(c)
	if err != nil {
		return nil, domain.Invalid("malformed comment reference")
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, domain.WrapStore("insert comment", err)
	}
	return doc.toDomain(), nil
}

// RestoreMany re-inserts deleted comments with their original ids.
func (r *CommentRepository) RestoreMany(ctx context.Context, comments []*domain.Comment) error {
	if len(comments) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(comments))
	for _, c := range comments {
		doc, err := toCommentDoc(c)
		if err != nil {
			return domain.Invalid("malformed comment reference")
		}
		docs = append(docs, doc)
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false)); err != nil {
		return domain.WrapStore("restore comments", err)
	}
	return nil
}

func (r *CommentRepository) FindByID(ctx context.Context, id string) (*domain.Comment, error) {
	o, err := oid(id)
	if err != nil {
		return nil, domain.ErrCommentNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc commentDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": o}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, domain.WrapStore("find comment", err)
	}
	return doc.toDomain(), nil
}

// ListByPin returns the pin's comments, oldest first.
func (r *CommentRepository) ListByPin(ctx context.Context, pinID string) ([]*domain.Comment, error) {
	o, err := oid(pinID)
	if err != nil {
		return []*domain.Comment{}, nil
	}
	return r.list(ctx, bson.M{"pin": o})
}

func (r *CommentRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Comment, error) {
	o, err := oid(userID)
	if err != nil {
		return []*domain.Comment{}, nil
	}
	return r.list(ctx, bson.M{"user": o})
}

func (r *CommentRepository) list(ctx context.Context, filter bson.M) ([]*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, domain.WrapStore("list comments", err)
	}
	var docs []commentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, domain.WrapStore("decode comments", err)
	}
	out := make([]*domain.Comment, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	o, err := oid(id)
	if err != nil {
		return domain.ErrCommentNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": o})
	if err != nil {
		return domain.WrapStore("delete comment", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}

func (r *CommentRepository) DeleteByPin(ctx context.Context, pinID string) (int64, error) {
	o, err := oid(pinID)
	if err != nil {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"pin": o})
	if err != nil {
		return 0, domain.WrapStore("delete comments", err)
	}
	return res.DeletedCount, nil
}
