package mongo

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hyceate/moody-sub000/internal/core/domain"
)

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Avatar       string             `bson:"avatar,omitempty"`
	Role         string             `bson:"role"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

type boardPinDoc struct {
	Pin     primitive.ObjectID `bson:"pin"`
	SavedAt time.Time          `bson:"saved_at"`
}

type boardDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	User        primitive.ObjectID `bson:"user"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	IsPrivate   bool               `bson:"is_private"`
	Pins        []boardPinDoc      `bson:"pins"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

type membershipDoc struct {
	Board   primitive.ObjectID `bson:"board"`
	SavedAt time.Time          `bson:"saved_at"`
}

type pinDoc struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	User        primitive.ObjectID   `bson:"user"`
	Title       string               `bson:"title"`
	Description string               `bson:"description"`
	ImagePath   string               `bson:"image_path"`
	ImageWidth  int                  `bson:"image_width"`
	ImageHeight int                  `bson:"image_height"`
	Link        string               `bson:"link,omitempty"`
	Tags        []string             `bson:"tags"`
	IsPrivate   bool                 `bson:"is_private"`
	Comments    []primitive.ObjectID `bson:"comments"`
	Boards      []membershipDoc      `bson:"boards"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

type commentDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Pin       primitive.ObjectID `bson:"pin"`
	User      primitive.ObjectID `bson:"user"`
	Text      string             `bson:"text"`
	CreatedAt time.Time          `bson:"created_at"`
}

var errInvalidID = errors.New("invalid object id")

// oid parses a hex identifier. Malformed ids can never match a document.
func oid(id string) (primitive.ObjectID, error) {
	o, err := primitive.ObjectIDFromHex(strings.ToLower(strings.TrimSpace(id)))
	if err != nil {
		return primitive.NilObjectID, errInvalidID
	}
	return o, nil
}

// oidOrNew parses id, or allocates a fresh ObjectID when id is empty.
func oidOrNew(id string) (primitive.ObjectID, error) {
	if strings.TrimSpace(id) == "" {
		return primitive.NewObjectID(), nil
	}
	return oid(id)
}

func oids(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if o, err := oid(id); err == nil {
			out = append(out, o)
		}
	}
	return out
}

func hexes(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}

// visibilityFilter pushes the privacy rule into the query: public documents,
// or private ones owned by the viewer.
func visibilityFilter(vis domain.Visibility) bson.M {
	if vis.Unrestricted() {
		return nil
	}
	public := bson.M{"is_private": false}
	if vis.Anonymous() {
		return public
	}
	viewer, err := oid(vis.ViewerID)
	if err != nil {
		return public
	}
	return bson.M{"$or": bson.A{public, bson.M{"user": viewer}}}
}

// and combines clauses, skipping nil ones.
func and(clauses ...bson.M) bson.M {
	parts := bson.A{}
	for _, c := range clauses {
		if len(c) > 0 {
			parts = append(parts, c)
		}
	}
	switch len(parts) {
	case 0:
		return bson.M{}
	case 1:
		return parts[0].(bson.M)
	default:
		return bson.M{"$and": parts}
	}
}

func isNoDocuments(err error) bool { return errors.Is(err, mongo.ErrNoDocuments) }

func toUserDoc(u *domain.User) (userDoc, error) {
	id, err := oidOrNew(u.ID)
	if err != nil {
		return userDoc{}, err
	}
	return userDoc{
		ID:           id,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Avatar:       u.Avatar,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}, nil
}

func (d userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Avatar:       d.Avatar,
		Role:         d.Role,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

func toBoardDoc(b *domain.Board) (boardDoc, error) {
	id, err := oidOrNew(b.ID)
	if err != nil {
		return boardDoc{}, err
	}
	user, err := oid(b.UserID)
	if err != nil {
		return boardDoc{}, err
	}
	pins := make([]boardPinDoc, 0, len(b.Pins))
	for _, ref := range b.Pins {
		p, err := oid(ref.PinID)
		if err != nil {
			return boardDoc{}, err
		}
		pins = append(pins, boardPinDoc{Pin: p, SavedAt: ref.SavedAt})
	}
	return boardDoc{
		ID:          id,
		User:        user,
		Title:       b.Title,
		Description: b.Description,
		IsPrivate:   b.IsPrivate,
		Pins:        pins,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}, nil
}

func (d boardDoc) toDomain() *domain.Board {
	pins := make([]domain.BoardPin, 0, len(d.Pins))
	for _, ref := range d.Pins {
		pins = append(pins, domain.BoardPin{PinID: ref.Pin.Hex(), SavedAt: ref.SavedAt.UTC()})
	}
	return &domain.Board{
		ID:          d.ID.Hex(),
		UserID:      d.User.Hex(),
		Title:       d.Title,
		Description: d.Description,
		IsPrivate:   d.IsPrivate,
		Pins:        pins,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

func toPinDoc(p *domain.Pin) (pinDoc, error) {
	id, err := oidOrNew(p.ID)
	if err != nil {
		return pinDoc{}, err
	}
	user, err := oid(p.UserID)
	if err != nil {
		return pinDoc{}, err
	}
	boards := make([]membershipDoc, 0, len(p.Boards))
	for _, m := range p.Boards {
		b, err := oid(m.BoardID)
		if err != nil {
			return pinDoc{}, err
		}
		boards = append(boards, membershipDoc{Board: b, SavedAt: m.SavedAt})
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return pinDoc{
		ID:          id,
		User:        user,
		Title:       p.Title,
		Description: p.Description,
		ImagePath:   p.ImagePath,
		ImageWidth:  p.ImageWidth,
		ImageHeight: p.ImageHeight,
		Link:        p.Link,
		Tags:        tags,
		IsPrivate:   p.IsPrivate,
		Comments:    oids(p.Comments),
		Boards:      boards,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

func (d pinDoc) toDomain() *domain.Pin {
	boards := make([]domain.Membership, 0, len(d.Boards))
	for _, m := range d.Boards {
		boards = append(boards, domain.Membership{BoardID: m.Board.Hex(), SavedAt: m.SavedAt.UTC()})
	}
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return &domain.Pin{
		ID:          d.ID.Hex(),
		UserID:      d.User.Hex(),
		Title:       d.Title,
		Description: d.Description,
		ImagePath:   d.ImagePath,
		ImageWidth:  d.ImageWidth,
		ImageHeight: d.ImageHeight,
		Link:        d.Link,
		Tags:        tags,
		IsPrivate:   d.IsPrivate,
		Comments:    hexes(d.Comments),
		Boards:      boards,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

func toCommentDoc(c *domain.Comment) (commentDoc, error) {
	id, err := oidOrNew(c.ID)
	if err != nil {
		return commentDoc{}, err
	}
	pin, err := oid(c.PinID)
	if err != nil {
		return commentDoc{}, err
	}
	user, err := oid(c.UserID)
	if err != nil {
		return commentDoc{}, err
	}
	return commentDoc{ID: id, Pin: pin, User: user, Text: c.Text, CreatedAt: c.CreatedAt}, nil
}

func (d commentDoc) toDomain() *domain.Comment {
	return &domain.Comment{
		ID:        d.ID.Hex(),
		PinID:     d.Pin.Hex(),
		UserID:    d.User.Hex(),
		Text:      d.Text,
		CreatedAt: d.CreatedAt.UTC(),
	}
}
