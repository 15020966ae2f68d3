package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	swerrors "github.com/matzehuels/storyweaver/pkg/errors"
	"github.com/matzehuels/storyweaver/pkg/project"
)

// mongoCollection holds one project.Document per project, keyed by _id.
const mongoCollection = "projects"

// MongoConfig holds connection settings for [NewMongo].
type MongoConfig struct {
	URI      string
	Database string
}

// Mongo stores each project as a document in the "projects" collection.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongo connects to MongoDB and verifies the connection.
func NewMongo(ctx context.Context, cfg MongoConfig) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	db := cfg.Database
	if db == "" {
		db = "storyweaver"
	}
	return &Mongo{client: client, coll: client.Database(db).Collection(mongoCollection)}, nil
}

func (m *Mongo) Get(ctx context.Context, id string) (*project.Project, error) {
	var doc project.Document
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("mongo get %s: %w", id, err)
	}
	return project.FromDocument(normalize(doc))
}

func (m *Mongo) Put(ctx context.Context, p *project.Project) error {
	if err := swerrors.ValidateProjectID(p.ID); err != nil {
		return err
	}
	doc := p.Document()
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo put %s: %w", p.ID, err)
	}
	return nil
}

func (m *Mongo) Delete(ctx context.Context, id string) error {
	res, err := m.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongo delete %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

func (m *Mongo) List(ctx context.Context) ([]project.Summary, error) {
	cur, err := m.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("mongo list: %w", err)
	}
	defer cur.Close(ctx)

	out := []project.Summary{}
	for cur.Next(ctx) {
		var doc project.Document
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("mongo list: %w", err)
		}
		out = append(out, project.Summary{
			ID:        doc.ID,
			Name:      doc.Name,
			Scenes:    len(doc.Nodes),
			CreatedAt: doc.CreatedAt,
			UpdatedAt: doc.UpdatedAt,
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("mongo list: %w", err)
	}
	sortSummaries(out)
	return out, nil
}

func (m *Mongo) Close() error {
	return m.client.Disconnect(context.Background())
}

// normalize restores the UTC location BSON datetimes lose on decode.
func normalize(doc project.Document) project.Document {
	doc.CreatedAt = doc.CreatedAt.UTC()
	doc.UpdatedAt = doc.UpdatedAt.UTC()
	return doc
}
