// Package mongostore persists users and appointments in MongoDB using the
// document layout of the original deployment.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"counseling-booking-api/internal/model"
)

const (
	usersColl        = "users"
	appointmentsColl = "appointments"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
	users  *mongo.Collection
	appts  *mongo.Collection
}

// Connect dials uri and pings the primary.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return New(client, database), nil
}

func New(client *mongo.Client, database string) *Store {
	db := client.Database(database)
	return &Store{
		client: client,
		db:     db,
		users:  db.Collection(usersColl),
		appts:  db.Collection(appointmentsColl),
	}
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// EnsureIndexes creates the unique email index and the lookup indexes used
// by listing and availability queries.
func (s *Store) EnsureIndexes(ctx context.Context) ([]string, error) {
	var names []string
	un, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "isActive", Value: 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("users indexes: %w", err)
	}
	names = append(names, un...)

	an, err := s.appts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "client", Value: 1}, {Key: "appointmentDate", Value: 1}}},
		{Keys: bson.D{{Key: "counselor", Value: 1}, {Key: "appointmentDate", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("appointments indexes: %w", err)
	}
	return append(names, an...), nil
}

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	doc := toUserDoc(u)
	doc.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	doc.CreatedAt, doc.UpdatedAt = now, now

	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.ErrDuplicate
		}
		return err
	}
	*u = *doc.toModel()
	return nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findUser(ctx, bson.M{"email": model.NormalizeEmail(email)})
}

func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, model.ErrNotFound
	}
	return s.findUser(ctx, bson.M{"_id": oid})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*model.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return doc.toModel(), nil
}

func (s *Store) ListCounselors(ctx context.Context, activeOnly bool) ([]model.User, error) {
	filter := bson.M{"role": string(model.RoleCounselor)}
	if activeOnly {
		filter["isActive"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.users.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]model.User, len(docs))
	for i := range docs {
		out[i] = *docs[i].toModel()
	}
	return out, nil
}

func (s *Store) SetUserActive(ctx context.Context, id string, active bool) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, model.ErrNotFound
	}
	var doc userDoc
	err = s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"isActive": active, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, notFound(err)
	}
	return doc.toModel(), nil
}

func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	doc, err := toApptDoc(a)
	if err != nil {
		return err
	}
	doc.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	doc.CreatedAt, doc.UpdatedAt = now, now

	if _, err := s.appts.InsertOne(ctx, doc); err != nil {
		return err
	}
	out, err := doc.toModel()
	if err != nil {
		return err
	}
	*a = *out
	return nil
}

func (s *Store) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, model.ErrNotFound
	}
	var doc apptDoc
	if err := s.appts.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return doc.toModel()
}

func (s *Store) ListAppointments(ctx context.Context, f model.AppointmentFilter) ([]model.Appointment, error) {
	filter := bson.M{}
	if f.ClientID != "" {
		oid, err := primitive.ObjectIDFromHex(f.ClientID)
		if err != nil {
			return nil, nil
		}
		filter["client"] = oid
	}
	if f.CounselorID != "" {
		oid, err := primitive.ObjectIDFromHex(f.CounselorID)
		if err != nil {
			return nil, nil
		}
		filter["counselor"] = oid
	}
	if f.Date != nil {
		filter["appointmentDate"] = f.Date.UTC()
	}
	if len(f.Statuses) > 0 {
		st := make([]string, len(f.Statuses))
		for i, v := range f.Statuses {
			st[i] = string(v)
		}
		filter["status"] = bson.M{"$in": st}
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "appointmentDate", Value: 1},
		{Key: "startTime", Value: 1},
		{Key: "_id", Value: 1},
	})
	cur, err := s.appts.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []apptDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]model.Appointment, 0, len(docs))
	for i := range docs {
		a, err := docs[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, nil
}

// UpdateAppointmentStatus matches on both id and the expected status, so
// the document is only modified by the first of several racing writers.
func (s *Store) UpdateAppointmentStatus(ctx context.Context, id string, ch model.StatusChange) (*model.Appointment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, model.ErrNotFound
	}
	set := bson.M{"status": string(ch.To), "updatedAt": time.Now().UTC()}
	if ch.CancelReason != "" {
		set["cancelReason"] = ch.CancelReason
	}
	if ch.Note != "" {
		set["notes."+notesKey(ch.NoteRole)] = ch.Note
	}

	var doc apptDoc
	err = s.appts.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "status": string(ch.From)},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == nil {
		return doc.toModel()
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	n, err := s.appts.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, model.ErrConflict
	}
	return nil, model.ErrNotFound
}

func notesKey(r model.Role) string {
	switch r {
	case model.RoleCounselor:
		return "counselor"
	case model.RoleAdmin:
		return "admin"
	}
	return "client"
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.ErrNotFound
	}
	return err
}
