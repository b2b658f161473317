package inbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps inboxes in MongoDB.
type MongoStore struct {
	client  *mongo.Client
	inboxes *mongo.Collection
	items   *mongo.Collection
}

type inboxDoc struct {
	ID        string    `bson:"_id"`
	OwnerHash []byte    `bson:"owner_hash"`
	Created   time.Time `bson:"created"`
}

type itemDoc struct {
	ID      string     `bson:"_id"`
	Inbox   string     `bson:"inbox"`
	Posted  time.Time  `bson:"posted"`
	Expires *time.Time `bson:"expires,omitempty"`
	Body    []byte     `bson:"body,omitempty"`
}

// NewMongoStore uses database db of client and ensures its indexes.
func NewMongoStore(ctx context.Context, client *mongo.Client, db string) (*MongoStore, error) {
	d := client.Database(db)
	s := &MongoStore{client: client, inboxes: d.Collection("inboxes"), items: d.Collection("items")}
	_, err := s.items.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "inbox", Value: 1}, {Key: "posted", Value: 1}}},
		{Keys: bson.D{{Key: "expires", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
	})
	if err != nil {
		return nil, fmt.Errorf("mongo indexes: %w", err)
	}
	return s, nil
}

func (s *MongoStore) CreateInbox(ctx context.Context, id string, ownerHash []byte) error {
	_, err := s.inboxes.InsertOne(ctx, inboxDoc{ID: id, OwnerHash: ownerHash, Created: time.Now().UTC()})
	return err
}

func (s *MongoStore) OwnerHash(ctx context.Context, id string) ([]byte, error) {
	var doc inboxDoc
	err := s.inboxes.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoInbox
	}
	if err != nil {
		return nil, err
	}
	return doc.OwnerHash, nil
}

func (s *MongoStore) Push(ctx context.Context, item Item) error {
	if _, err := s.OwnerHash(ctx, item.Inbox); err != nil {
		return err
	}
	doc := itemDoc{ID: item.ID, Inbox: item.Inbox, Posted: item.Posted.UTC(), Body: item.Body}
	if !item.Expires.IsZero() {
		exp := item.Expires.UTC()
		doc.Expires = &exp
	}
	_, err := s.items.InsertOne(ctx, doc)
	return err
}

func (s *MongoStore) List(ctx context.Context, inbox string) ([]Item, error) {
	if _, err := s.OwnerHash(ctx, inbox); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	filter := bson.M{
		"inbox": inbox,
		"$or": bson.A{
			bson.M{"expires": bson.M{"$exists": false}},
			bson.M{"expires": bson.M{"$gt": now}},
		},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "posted", Value: 1}}).
		SetProjection(bson.M{"body": 0})
	cur, err := s.items.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Item
	for cur.Next(ctx) {
		var d itemDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, Item{ID: d.ID, Inbox: d.Inbox, Posted: d.Posted.UTC()})
	}
	return out, cur.Err()
}

func (s *MongoStore) Get(ctx context.Context, inbox, id string) (Item, error) {
	var d itemDoc
	err := s.items.FindOne(ctx, bson.M{"_id": id, "inbox": inbox}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Item{}, ErrNoItem
	}
	if err != nil {
		return Item{}, err
	}
	if d.Expires != nil && !time.Now().Before(*d.Expires) {
		return Item{}, ErrNoItem
	}
	return Item{ID: d.ID, Inbox: d.Inbox, Posted: d.Posted.UTC(), Body: d.Body}, nil
}

func (s *MongoStore) Delete(ctx context.Context, inbox, id string) error {
	res, err := s.items.DeleteOne(ctx, bson.M{"_id": id, "inbox": inbox})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNoItem
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
