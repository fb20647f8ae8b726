// internal/app/store/activity/store.go
package activity

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Kinds of transaction activity.
const (
	KindMint     = "mint"     // Tokens requested from the backend
	KindDelegate = "delegate" // Self-delegation sent to the token contract
)

// Statuses a transaction moves through.
const (
	StatusSubmitted = "submitted"
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
)

// Event is one state-changing action taken from the dashboard.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"session_id,omitempty" json:"-"`
	Address   string             `bson:"address" json:"address"` // lowercase hex
	Kind      string             `bson:"kind" json:"kind"`
	Amount    string             `bson:"amount,omitempty" json:"amount,omitempty"`
	TxHash    string             `bson:"tx_hash,omitempty" json:"txHash,omitempty"`
	Status    string             `bson:"status" json:"status"`
	Error     string             `bson:"error,omitempty" json:"error,omitempty"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// Store manages transaction activity.
type Store struct {
	c *mongo.Collection
}

// New creates a new activity Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tx_activity")}
}

// EnsureIndexes creates necessary indexes for efficient querying.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// Recent activity for an address (activity page)
		{
			Keys:    bson.D{{Key: "address", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_txactivity_address"),
		},
		// Status updates look transactions up by hash
		{
			Keys:    bson.D{{Key: "tx_hash", Value: 1}},
			Options: options.Index().SetName("idx_txactivity_hash").SetSparse(true),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create records a new event.
func (s *Store) Create(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.Address = strings.ToLower(event.Address)
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// SetStatus updates the status of the event for txHash. It returns
// mongo.ErrNoDocuments when no event carries that hash.
func (s *Store) SetStatus(ctx context.Context, txHash, status, errMsg string) error {
	set := bson.M{"status": status}
	if errMsg != "" {
		set["error"] = errMsg
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"tx_hash": txHash}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// GetByAddress retrieves recent events for an address, newest first.
func (s *Store) GetByAddress(ctx context.Context, address string, limit int64) ([]Event, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, bson.M{"address": strings.ToLower(address)}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CountByKind counts an address's events of one kind.
func (s *Store) CountByKind(ctx context.Context, address, kind string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"address": strings.ToLower(address), "kind": kind})
}
