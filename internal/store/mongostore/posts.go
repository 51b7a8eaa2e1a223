// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/tomtom215/launchpad/internal/database"
	"github.com/tomtom215/launchpad/internal/models"
)

type postDoc struct {
	ID            bson.ObjectID `bson:"_id,omitempty"`
	Title         string        `bson:"title"`
	Content       string        `bson:"content"`
	Excerpt       string        `bson:"excerpt,omitempty"`
	FeaturedImage string        `bson:"featuredImage,omitempty"`
	Status        string        `bson:"status"`
	CreatedAt     time.Time     `bson:"created_at"`
	UpdatedAt     time.Time     `bson:"updated_at"`
}

func (d *postDoc) toModel() *models.Post {
	return &models.Post{
		ID:            d.ID.Hex(),
		Title:         d.Title,
		Content:       d.Content,
		Excerpt:       d.Excerpt,
		FeaturedImage: d.FeaturedImage,
		Status:        d.Status,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type postRepo struct{ s *Store }

func (r *postRepo) Create(ctx context.Context, p *models.Post) error {
	coll, err := r.s.collection(ctx, database.PostsCollection)
	if err != nil {
		return err
	}
	now := r.s.now()
	if p.Status == "" {
		p.Status = models.PostDraft
	}
	doc := postDoc{
		ID:            bson.NewObjectID(),
		Title:         p.Title,
		Content:       p.Content,
		Excerpt:       p.Excerpt,
		FeaturedImage: p.FeaturedImage,
		Status:        p.Status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return wrapErr(database.PostsCollection, "insert", err)
	}
	p.ID, p.CreatedAt, p.UpdatedAt = doc.ID.Hex(), now, now
	return nil
}

func (r *postRepo) FindByID(ctx context.Context, id string) (*models.Post, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	coll, err := r.s.collection(ctx, database.PostsCollection)
	if err != nil {
		return nil, err
	}
	var doc postDoc
	if err := coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return nil, wrapErr(database.PostsCollection, "find", err)
	}
	return doc.toModel(), nil
}

func (r *postRepo) Update(ctx context.Context, id string, upd models.PostUpdate) (*models.Post, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	coll, err := r.s.collection(ctx, database.PostsCollection)
	if err != nil {
		return nil, err
	}

	set := bson.D{{Key: "updated_at", Value: r.s.now()}}
	for _, f := range []struct {
		key string
		val *string
	}{
		{"title", upd.Title},
		{"content", upd.Content},
		{"excerpt", upd.Excerpt},
		{"featuredImage", upd.FeaturedImage},
		{"status", upd.Status},
	} {
		if f.val != nil {
			set = append(set, bson.E{Key: f.key, Value: *f.val})
		}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc postDoc
	err = coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
	if err != nil {
		return nil, wrapErr(database.PostsCollection, "update", err)
	}
	return doc.toModel(), nil
}

func (r *postRepo) List(ctx context.Context, opts models.PostListOptions) ([]*models.Post, error) {
	coll, err := r.s.collection(ctx, database.PostsCollection)
	if err != nil {
		return nil, err
	}
	filter := bson.D{}
	if opts.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: opts.Status})
	}
	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		findOpts.SetSkip(int64(opts.Offset))
	}

	cur, err := coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, wrapErr(database.PostsCollection, "find", err)
	}
	var docs []postDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrapErr(database.PostsCollection, "decode", err)
	}
	out := make([]*models.Post, len(docs))
	for i := range docs {
		out[i] = docs[i].toModel()
	}
	return out, nil
}

func (r *postRepo) Count(ctx context.Context) (int64, error) {
	coll, err := r.s.collection(ctx, database.PostsCollection)
	if err != nil {
		return 0, err
	}
	n, err := coll.CountDocuments(ctx, bson.D{})
	return n, wrapErr(database.PostsCollection, "count", err)
}
