package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rohits-web03/folio/internal/models"
	"github.com/rohits-web03/folio/internal/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection     = "users"
	documentsCollection = "documents"
)

type MongoStore struct {
	client    *mongo.Client
	users     *mongoUsers
	documents *mongoDocuments
}

// NewMongoStore connects to uri and makes sure the unique
// (identifier, owner) index exists on the documents collection.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	const op = "repositories.mongodb.New"

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db := client.Database(database)
	docs := db.Collection(documentsCollection)
	_, err = docs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "identifier", Value: 1}, {Key: "owner_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &MongoStore{
		client:    client,
		users:     &mongoUsers{coll: db.Collection(usersCollection)},
		documents: &mongoDocuments{coll: docs},
	}, nil
}

func (s *MongoStore) Users() UserStore         { return s.users }
func (s *MongoStore) Documents() DocumentStore { return s.documents }

func (s *MongoStore) Close(ctx context.Context) error {
	if s.client != nil {
		return s.client.Disconnect(ctx)
	}
	return nil
}

// mongoFilter translates a predicate into a bson filter. Ids and owners are
// stored as their string form.
func mongoFilter(p query.Predicate) bson.M {
	switch p := p.(type) {
	case nil:
		return bson.M{}
	case query.Eq:
		field := p.Field
		if field == query.FieldID {
			field = "_id"
		}
		value := p.Value
		if id, ok := value.(uuid.UUID); ok {
			value = id.String()
		}
		return bson.M{field: value}
	case query.And:
		if len(p) == 0 {
			return bson.M{}
		}
		parts := make(bson.A, 0, len(p))
		for _, sub := range p {
			parts = append(parts, mongoFilter(sub))
		}
		return bson.M{"$and": parts}
	case query.Or:
		if len(p) == 0 {
			return bson.M{"$expr": false}
		}
		parts := make(bson.A, 0, len(p))
		for _, sub := range p {
			parts = append(parts, mongoFilter(sub))
		}
		return bson.M{"$or": parts}
	}
	return bson.M{"$expr": false}
}

type mongoDocument struct {
	ID         string    `bson:"_id"`
	Identifier string    `bson:"identifier"`
	OwnerID    string    `bson:"owner_id"`
	Category   string    `bson:"category"`
	Public     bool      `bson:"public"`
	Title      string    `bson:"title"`
	Content    string    `bson:"content"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

func toMongoDocument(d *models.Document) mongoDocument {
	return mongoDocument{
		ID:         d.ID.String(),
		Identifier: d.Identifier,
		OwnerID:    d.OwnerID.String(),
		Category:   d.Category,
		Public:     d.Public,
		Title:      d.Title,
		Content:    d.Content,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func (m mongoDocument) model() (models.Document, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return models.Document{}, err
	}
	owner, err := uuid.Parse(m.OwnerID)
	if err != nil {
		return models.Document{}, err
	}
	return models.Document{
		ID:         id,
		Identifier: m.Identifier,
		OwnerID:    owner,
		Category:   m.Category,
		Public:     m.Public,
		Title:      m.Title,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}, nil
}

type mongoDocuments struct {
	coll *mongo.Collection
}

func (s *mongoDocuments) Find(ctx context.Context, p query.Predicate) ([]models.Document, error) {
	const op = "repositories.mongodb.Documents.Find"

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.coll.Find(ctx, mongoFilter(p), opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var records []mongoDocument
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	docs := make([]models.Document, 0, len(records))
	for _, rec := range records {
		doc, err := rec.model()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *mongoDocuments) FindOne(ctx context.Context, p query.Predicate) (*models.Document, error) {
	const op = "repositories.mongodb.Documents.FindOne"

	var rec mongoDocument
	err := s.coll.FindOne(ctx, mongoFilter(p)).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	doc, err := rec.model()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &doc, nil
}

func (s *mongoDocuments) Save(ctx context.Context, doc *models.Document) error {
	const op = "repositories.mongodb.Documents.Save"

	before := *doc
	now := time.Now().UTC()
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	rec := toMongoDocument(doc)
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec, opts); err != nil {
		doc.ID, doc.CreatedAt, doc.UpdatedAt = before.ID, before.CreatedAt, before.UpdatedAt
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *mongoDocuments) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "repositories.mongodb.Documents.Delete"

	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type mongoUser struct {
	ID         string    `bson:"_id"`
	GoogleID   string    `bson:"google_id"`
	Email      string    `bson:"email"`
	Name       string    `bson:"name"`
	ImageURL   string    `bson:"image_url"`
	Subscribed bool      `bson:"subscribed"`
	IsAdmin    bool      `bson:"is_admin"`
	AuthKey    string    `bson:"auth_key"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

func (m mongoUser) model() (models.User, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return models.User{}, err
	}
	return models.User{
		ID:         id,
		GoogleID:   m.GoogleID,
		Email:      m.Email,
		Name:       m.Name,
		ImageURL:   m.ImageURL,
		Subscribed: m.Subscribed,
		IsAdmin:    m.IsAdmin,
		AuthKey:    m.AuthKey,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}, nil
}

type mongoUsers struct {
	coll *mongo.Collection
}

func (s *mongoUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.FindOne(ctx, query.Eq{Field: query.FieldID, Value: id})
}

func (s *mongoUsers) FindOne(ctx context.Context, p query.Predicate) (*models.User, error) {
	const op = "repositories.mongodb.Users.FindOne"

	var rec mongoUser
	err := s.coll.FindOne(ctx, mongoFilter(p)).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := rec.model()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

func (s *mongoUsers) Save(ctx context.Context, user *models.User) error {
	const op = "repositories.mongodb.Users.Save"

	now := time.Now().UTC()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	rec := mongoUser{
		ID:         user.ID.String(),
		GoogleID:   user.GoogleID,
		Email:      user.Email,
		Name:       user.Name,
		ImageURL:   user.ImageURL,
		Subscribed: user.Subscribed,
		IsAdmin:    user.IsAdmin,
		AuthKey:    user.AuthKey,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec, opts); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
