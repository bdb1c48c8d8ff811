package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/msomdec/postboard/internal/domain"
)

type postDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	AuthorID  string             `bson:"authorId"`
	Author    string             `bson:"name"`
	Title     string             `bson:"title"`
	Content   string             `bson:"content"`
	CreatedAt time.Time          `bson:"created_at"`
	Comments  []commentDoc       `bson:"comments"`
}

type commentDoc struct {
	Author    string    `bson:"name"`
	Text      string    `bson:"text"`
	CreatedAt time.Time `bson:"created_at"`
}

func (d *postDoc) toDomain() domain.Post {
	p := domain.Post{
		ID:        d.ID.Hex(),
		AuthorID:  d.AuthorID,
		Author:    d.Author,
		Title:     d.Title,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
		Comments:  make([]domain.Comment, 0, len(d.Comments)),
	}
	for _, c := range d.Comments {
		p.Comments = append(p.Comments, domain.Comment{Author: c.Author, Text: c.Text, CreatedAt: c.CreatedAt})
	}
	return p
}

type postRepo struct {
	coll *mongo.Collection
}

// creationOrder sorts by creation time, breaking ties with the ObjectID,
// whose leading bytes are also a timestamp.
var creationOrder = bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}

func (r *postRepo) Create(ctx context.Context, post *domain.Post) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := postDoc{
		AuthorID:  post.AuthorID,
		Author:    post.Author,
		Title:     post.Title,
		Content:   post.Content,
		CreatedAt: now,
		// $push needs an array to append to, never null.
		Comments: []commentDoc{},
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("insert post: unexpected id type %T", res.InsertedID)
	}

	post.ID = oid.Hex()
	post.CreatedAt = now
	post.Comments = []domain.Comment{}
	return nil
}

func (r *postRepo) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var doc postDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	p := doc.toDomain()
	return &p, nil
}

func (r *postRepo) ListByAuthor(ctx context.Context, author string) ([]domain.Post, error) {
	return r.find(ctx, bson.M{"name": author})
}

func (r *postRepo) ListAll(ctx context.Context) ([]domain.Post, error) {
	return r.find(ctx, bson.M{})
}

func (r *postRepo) find(ctx context.Context, filter bson.M) ([]domain.Post, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(creationOrder))
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	var docs []postDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}

	posts := make([]domain.Post, 0, len(docs))
	for i := range docs {
		posts = append(posts, docs[i].toDomain())
	}
	return posts, nil
}

func (r *postRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postRepo) AppendComment(ctx context.Context, postID string, comment *domain.Comment) error {
	oid, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return domain.ErrNotFound
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := commentDoc{Author: comment.Author, Text: comment.Text, CreatedAt: now}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$push": bson.M{"comments": doc}})
	if err != nil {
		return fmt.Errorf("push comment: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}

	comment.CreatedAt = now
	return nil
}
