// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/tomtom215/launchpad/internal/apperr"
	"github.com/tomtom215/launchpad/internal/database"
	"github.com/tomtom215/launchpad/internal/models"
)

type userDoc struct {
	ID            bson.ObjectID `bson:"_id,omitempty"`
	Email         string        `bson:"email"`
	Name          string        `bson:"name"`
	Image         string        `bson:"image,omitempty"`
	PasswordHash  *string       `bson:"password,omitempty"`
	EmailVerified *time.Time    `bson:"emailVerified,omitempty"`
	Role          string        `bson:"role"`
	CreatedAt     time.Time     `bson:"created_at"`
	UpdatedAt     time.Time     `bson:"updated_at"`
}

func (d *userDoc) toModel() *models.User {
	return &models.User{
		ID:            d.ID.Hex(),
		Email:         d.Email,
		Name:          d.Name,
		Image:         d.Image,
		PasswordHash:  d.PasswordHash,
		EmailVerified: d.EmailVerified,
		Role:          d.Role,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	coll, err := r.s.collection(ctx, database.UsersCollection)
	if err != nil {
		return err
	}
	// Email uniqueness is enforced by the email_unique index only.
	if !r.s.pool.IndexesReady() {
		return fmt.Errorf("%w: users email index is not in place", apperr.ErrConnectivity)
	}

	now := r.s.now()
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	doc := userDoc{
		ID:            bson.NewObjectID(),
		Email:         models.NormalizeEmail(u.Email),
		Name:          u.Name,
		Image:         u.Image,
		PasswordHash:  u.PasswordHash,
		EmailVerified: u.EmailVerified,
		Role:          u.Role,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return wrapErr(database.UsersCollection, "insert", err)
	}

	u.ID, u.Email, u.CreatedAt, u.UpdatedAt = doc.ID.Hex(), doc.Email, now, now
	return nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: models.NormalizeEmail(email)}})
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *userRepo) findOne(ctx context.Context, filter bson.D) (*models.User, error) {
	coll, err := r.s.collection(ctx, database.UsersCollection)
	if err != nil {
		return nil, err
	}
	var doc userDoc
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, wrapErr(database.UsersCollection, "find", err)
	}
	return doc.toModel(), nil
}

// List never loads password hashes.
func (r *userRepo) List(ctx context.Context) ([]*models.User, error) {
	coll, err := r.s.collection(ctx, database.UsersCollection)
	if err != nil {
		return nil, err
	}
	opts := options.Find().
		SetProjection(bson.D{{Key: "password", Value: 0}}).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cur, err := coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, wrapErr(database.UsersCollection, "find", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrapErr(database.UsersCollection, "decode", err)
	}

	out := make([]*models.User, len(docs))
	for i := range docs {
		out[i] = docs[i].toModel()
	}
	return out, nil
}

func (r *userRepo) Count(ctx context.Context) (int64, error) {
	coll, err := r.s.collection(ctx, database.UsersCollection)
	if err != nil {
		return 0, err
	}
	n, err := coll.CountDocuments(ctx, bson.D{})
	return n, wrapErr(database.UsersCollection, "count", err)
}
