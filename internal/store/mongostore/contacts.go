// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package mongostore

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/tomtom215/launchpad/internal/database"
	"github.com/tomtom215/launchpad/internal/models"
)

type contactDoc struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Name      string        `bson:"name"`
	Email     string        `bson:"email"`
	Message   string        `bson:"message"`
	Status    string        `bson:"status"`
	CreatedAt time.Time     `bson:"created_at"`
}

func (d *contactDoc) toModel() *models.ContactMessage {
	return &models.ContactMessage{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		Message:   d.Message,
		Status:    d.Status,
		CreatedAt: d.CreatedAt,
	}
}

type contactRepo struct{ s *Store }

func (r *contactRepo) Create(ctx context.Context, m *models.ContactMessage) error {
	coll, err := r.s.collection(ctx, database.ContactsCollection)
	if err != nil {
		return err
	}
	if m.Status == "" {
		m.Status = models.ContactNew
	}
	doc := contactDoc{
		ID:        bson.NewObjectID(),
		Name:      m.Name,
		Email:     m.Email,
		Message:   m.Message,
		Status:    m.Status,
		CreatedAt: r.s.now(),
	}
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return wrapErr(database.ContactsCollection, "insert", err)
	}
	m.ID, m.CreatedAt = doc.ID.Hex(), doc.CreatedAt
	return nil
}

// contactFilter builds the query for opts. The search term is escaped so user
// input is matched literally.
func contactFilter(opts models.ContactListOptions) bson.D {
	filter := bson.D{}
	if s := opts.FilterStatus(); s != "" {
		filter = append(filter, bson.E{Key: "status", Value: s})
	}
	if term := strings.TrimSpace(opts.Search); term != "" {
		re := bson.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "name", Value: re}},
			bson.D{{Key: "email", Value: re}},
			bson.D{{Key: "message", Value: re}},
		}})
	}
	return filter
}

func contactSort(order string) bson.D {
	switch order {
	case models.SortOldest:
		return bson.D{{Key: "created_at", Value: 1}}
	case models.SortName:
		return bson.D{{Key: "name", Value: 1}, {Key: "created_at", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

func (r *contactRepo) List(ctx context.Context, opts models.ContactListOptions) ([]*models.ContactMessage, error) {
	coll, err := r.s.collection(ctx, database.ContactsCollection)
	if err != nil {
		return nil, err
	}
	findOpts := options.Find().SetSort(contactSort(opts.Sort))
	if opts.Sort == models.SortName {
		findOpts.SetCollation(&options.Collation{Locale: "en", Strength: 2})
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		findOpts.SetSkip(int64(opts.Offset))
	}

	cur, err := coll.Find(ctx, contactFilter(opts), findOpts)
	if err != nil {
		return nil, wrapErr(database.ContactsCollection, "find", err)
	}
	var docs []contactDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrapErr(database.ContactsCollection, "decode", err)
	}
	out := make([]*models.ContactMessage, len(docs))
	for i := range docs {
		out[i] = docs[i].toModel()
	}
	return out, nil
}

func (r *contactRepo) UpdateStatus(ctx context.Context, id, status string) (*models.ContactMessage, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	coll, err := r.s.collection(ctx, database.ContactsCollection)
	if err != nil {
		return nil, err
	}
	var doc contactDoc
	err = coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: status}}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, wrapErr(database.ContactsCollection, "update", err)
	}
	return doc.toModel(), nil
}

func (r *contactRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	coll, err := r.s.collection(ctx, database.ContactsCollection)
	if err != nil {
		return 0, err
	}
	filter := bson.D{}
	if status != "" {
		filter = append(filter, bson.E{Key: "status", Value: status})
	}
	n, err := coll.CountDocuments(ctx, filter)
	return n, wrapErr(database.ContactsCollection, "count", err)
}
