package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"mgacha-dashboard/internal/logger"
	"mgacha-dashboard/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore implements GachaStore on the game's MongoDB database.
type MongoStore struct {
	client    *mongo.Client
	db        *mongo.Database
	users     *mongo.Collection
	inventory *mongo.Collection
	cards     *mongo.Collection
	logs      *mongo.Collection
}

// NewMongoStore connects to MongoDB and opens the gacha collections.
func NewMongoStore(uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Reads only; secondaries are fine.
	clientOpts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(20).
		SetMinPoolSize(2).
		SetMaxConnIdleTime(5 * time.Minute).
		SetReadPreference(readpref.SecondaryPreferred())

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	logger.Log.Infof("[MongoStore] Connected to %s", database)

	return &MongoStore{
		client:    client,
		db:        db,
		users:     db.Collection(UsersCollection),
		inventory: db.Collection(InventoryCollection),
		cards:     db.Collection(CardsCollection),
		logs:      db.Collection(LogCollection),
	}, nil
}

type userDocument struct {
	ID               interface{} `bson:"_id"`
	TwitchName       string      `bson:"twitch_name"`
	TwitchID         interface{} `bson:"twitch_id"`
	Tokens           int64       `bson:"tokens"`
	TotalUniqueCards int64       `bson:"total_unique_cards"`
}

func (d *userDocument) toModel() model.User {
	return model.User{
		ID:               idString(d.ID),
		TwitchName:       d.TwitchName,
		TwitchID:         idString(d.TwitchID),
		Tokens:           d.Tokens,
		TotalUniqueCards: d.TotalUniqueCards,
	}
}

type inventoryDocument struct {
	UserID   interface{} `bson:"user_id"`
	CardID   interface{} `bson:"card_id"`
	Quantity *int        `bson:"quantity"`
}

type cardDocument struct {
	ID       interface{} `bson:"_id"`
	Name     string      `bson:"name"`
	Rarity   string      `bson:"rarity"`
	ImageURL string      `bson:"image_url"`
	Number   int         `bson:"number"`
}

func (d *cardDocument) toModel() model.Card {
	return model.Card{
		ID:       idString(d.ID),
		Name:     d.Name,
		Rarity:   d.Rarity,
		ImageURL: d.ImageURL,
		Number:   d.Number,
	}
}

type logDocument struct {
	ID        interface{} `bson:"_id"`
	TwitchID  interface{} `bson:"twitch_id"`
	Action    string      `bson:"action"`
	Timestamp time.Time   `bson:"timestamp"`
	Details   bson.M      `bson:"details"`
}

// idString renders an _id or reference value the way the dashboard keys it.
func idString(v interface{}) string {
	switch id := v.(type) {
	case nil:
		return ""
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}

// idCandidates returns every stored representation an identifier may have.
// References written by the game engine are ObjectIDs; imported data may use strings.
func idCandidates(id string) bson.M {
	candidates := []interface{}{id}
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		candidates = append(candidates, oid)
	}
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		candidates = append(candidates, n, int32(n))
	}
	return bson.M{"$in": candidates}
}

// TopUsers returns the leaderboard head.
func (s *MongoStore) TopUsers(ctx context.Context, limit int) ([]model.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "total_unique_cards", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))
	return s.findUsers(ctx, bson.M{}, opts)
}

// ListUsers returns all users ordered by display name.
func (s *MongoStore) ListUsers(ctx context.Context) ([]model.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "twitch_name", Value: 1}})
	return s.findUsers(ctx, bson.M{}, opts)
}

func (s *MongoStore) findUsers(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]model.User, error) {
	cursor, err := s.users.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	users := make([]model.User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].toModel())
	}
	return users, nil
}

// FindUserByName finds a user by Twitch display name.
func (s *MongoStore) FindUserByName(ctx context.Context, name string) (*model.User, error) {
	var doc userDocument
	err := s.users.FindOne(ctx, bson.M{"twitch_name": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %q: %w", name, err)
	}

	user := doc.toModel()
	return &user, nil
}

// InventoryByUser returns a user's inventory in insertion order.
func (s *MongoStore) InventoryByUser(ctx context.Context, userID string) ([]model.InventoryEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.inventory.Find(ctx, bson.M{"user_id": idCandidates(userID)}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []inventoryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode inventory: %w", err)
	}

	entries := make([]model.InventoryEntry, 0, len(docs))
	for _, doc := range docs {
		quantity := 1
		if doc.Quantity != nil {
			quantity = *doc.Quantity
		}
		entries = append(entries, model.InventoryEntry{
			UserID:   idString(doc.UserID),
			CardID:   idString(doc.CardID),
			Quantity: quantity,
		})
	}
	return entries, nil
}

// FindCard finds a card definition by identifier.
func (s *MongoStore) FindCard(ctx context.Context, cardID string) (*model.Card, error) {
	var doc cardDocument
	err := s.cards.FindOne(ctx, bson.M{"_id": idCandidates(cardID)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card %s: %w", cardID, err)
	}

	card := doc.toModel()
	return &card, nil
}

// ListCards returns all card definitions ordered by number.
func (s *MongoStore) ListCards(ctx context.Context) ([]model.Card, error) {
	opts := options.Find().SetSort(bson.D{{Key: "number", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.cards.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []cardDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode cards: %w", err)
	}

	cards := make([]model.Card, 0, len(docs))
	for i := range docs {
		cards = append(cards, docs[i].toModel())
	}
	return cards, nil
}

// LogsByTwitchID returns a user's action log, newest first.
// Equal timestamps fall back to _id so repeated reads agree.
func (s *MongoStore) LogsByTwitchID(ctx context.Context, twitchID string) ([]model.LogEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := s.logs.Find(ctx, bson.M{"twitch_id": idCandidates(twitchID)}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query log history: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []logDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode log history: %w", err)
	}

	entries := make([]model.LogEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, model.LogEntry{
			ID:        idString(doc.ID),
			TwitchID:  idString(doc.TwitchID),
			Action:    doc.Action,
			Timestamp: doc.Timestamp.UTC(),
			Details:   map[string]interface{}(doc.Details),
		})
	}
	return entries, nil
}

// GetStats returns document counts per collection.
func (s *MongoStore) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})
	stats["status"] = "connected"

	for name, coll := range map[string]*mongo.Collection{
		UsersCollection:     s.users,
		InventoryCollection: s.inventory,
		CardsCollection:     s.cards,
		LogCollection:       s.logs,
	} {
		count, err := coll.EstimatedDocumentCount(ctx)
		if err != nil {
			return stats, fmt.Errorf("failed to count %s: %w", name, err)
		}
		stats[name] = count
	}

	var dbStats bson.M
	if err := s.db.RunCommand(ctx, bson.D{{Key: "dbStats", Value: 1}}).Decode(&dbStats); err == nil {
		switch size := dbStats["dataSize"].(type) {
		case int64:
			stats["db_size_bytes"] = size
		case int32:
			stats["db_size_bytes"] = int64(size)
		case float64:
			stats["db_size_bytes"] = int64(size)
		}
	}

	return stats, nil
}

// Ping verifies the MongoDB connection.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close closes the MongoDB connection.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ GachaStore = (*MongoStore)(nil)
