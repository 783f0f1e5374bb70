package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"
	"waste-route-service/internal/domain"
	"waste-route-service/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	binsCollection   = "bins"
	trucksCollection = "trucks"
)

// MongoStore backs the bin and truck ports with MongoDB collections.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// OpenMongo connects to uri and verifies the connection.
func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerSelectionTimeout(10*time.Second))
	if err != nil {
		return nil, fmt.Errorf("open mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("open mongo: ping: %w", err)
	}
	return &MongoStore{client: client, db: client.Database(database)}, nil
}

// EnsureIndexes creates the unique keys the stores rely on. Idempotent.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(binsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "bin_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "city", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("ensure indexes: bins: %w", err)
	}

	_, err = s.db.Collection(trucksCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "city", Value: 1}, {Key: "truck_number", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("ensure indexes: trucks: %w", err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) Bins() *MongoBinRepository {
	return &MongoBinRepository{coll: s.db.Collection(binsCollection)}
}

func (s *MongoStore) Trucks() *MongoTruckRepository {
	return &MongoTruckRepository{coll: s.db.Collection(trucksCollection)}
}

type binDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	BinID         string             `bson:"bin_id"`
	Location      string             `bson:"location"`
	City          string             `bson:"city"`
	Zone          string             `bson:"zone"`
	FillLevel     int                `bson:"fill_level"`
	Priority      string             `bson:"priority"`
	Status        string             `bson:"status"`
	TruckAssigned *string            `bson:"truck_assigned"`
	Capacity      int                `bson:"capacity"`
	LastCollected *time.Time         `bson:"last_collected"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

func newBinDocument(b *domain.Bin) binDocument {
	return binDocument{
		BinID:         b.BinID,
		Location:      b.Location,
		City:          string(b.City),
		Zone:          b.Zone,
		FillLevel:     b.FillLevel,
		Priority:      string(b.Priority),
		Status:        string(b.Status),
		TruckAssigned: b.TruckAssigned,
		Capacity:      b.Capacity,
		LastCollected: b.LastCollected,
		UpdatedAt:     b.UpdatedAt,
	}
}

func (d binDocument) toDomain() domain.Bin {
	var lastCollected *time.Time
	if d.LastCollected != nil {
		t := d.LastCollected.UTC()
		lastCollected = &t
	}
	return domain.Bin{
		ID:            d.ID.Hex(),
		BinID:         d.BinID,
		Location:      d.Location,
		City:          domain.City(d.City),
		Zone:          d.Zone,
		FillLevel:     d.FillLevel,
		Priority:      domain.Priority(d.Priority),
		Status:        domain.BinStatus(d.Status),
		TruckAssigned: d.TruckAssigned,
		Capacity:      d.Capacity,
		LastCollected: lastCollected,
		UpdatedAt:     d.UpdatedAt.UTC(),
	}
}

// MongoDB-backed implementation of the BinRepository port.
type MongoBinRepository struct {
	coll *mongo.Collection
}

func (r *MongoBinRepository) find(ctx context.Context, op string, filter bson.M) ([]domain.Bin, error) {
	// ObjectIDs grow monotonically, so _id order is insertion order.
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}

	var docs []binDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	bins := make([]domain.Bin, 0, len(docs))
	for _, d := range docs {
		bins = append(bins, d.toDomain())
	}
	return bins, nil
}

func (r *MongoBinRepository) List(ctx context.Context) ([]domain.Bin, error) {
	return r.find(ctx, "list bins", bson.M{})
}

func (r *MongoBinRepository) FindByCity(ctx context.Context, city domain.City) ([]domain.Bin, error) {
	return r.find(ctx, "find bins by city", bson.M{"city": string(city)})
}

func (r *MongoBinRepository) FindByBinID(ctx context.Context, binID string) (*domain.Bin, error) {
	var doc binDocument
	err := r.coll.FindOne(ctx, bson.M{"bin_id": binID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("find bin %q: %w", binID, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find bin %q: %w", binID, err)
	}
	b := doc.toDomain()
	return &b, nil
}

func (r *MongoBinRepository) Save(ctx context.Context, bin *domain.Bin) error {
	bin.ApplyDefaults()
	bin.Reclassify()
	if err := bin.Validate(); err != nil {
		return fmt.Errorf("save bin: %w", err)
	}
	if bin.UpdatedAt.IsZero() {
		bin.UpdatedAt = time.Now().UTC()
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved binDocument
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"bin_id": bin.BinID},
		bson.M{"$set": newBinDocument(bin)},
		opts,
	).Decode(&saved)
	if err != nil {
		return fmt.Errorf("save bin %s: upsert: %w", bin.BinID, err)
	}

	bin.ID = saved.ID.Hex()
	return nil
}

type truckDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	TruckNumber     int                `bson:"truck_number"`
	Name            string             `bson:"name"`
	City            string             `bson:"city"`
	Zone            string             `bson:"zone"`
	Capacity        int                `bson:"capacity"`
	CurrentLoad     int                `bson:"current_load"`
	Status          string             `bson:"status"`
	Driver          *string            `bson:"driver"`
	Color           string             `bson:"color"`
	BaseDistanceKm  float64            `bson:"base_distance_km"`
	BaseTimeMinutes int                `bson:"base_time_minutes"`
}

func newTruckDocument(t *domain.Truck) truckDocument {
	return truckDocument{
		TruckNumber:     t.TruckNumber,
		Name:            t.Name,
		City:            string(t.City),
		Zone:            t.Zone,
		Capacity:        t.Capacity,
		CurrentLoad:     t.CurrentLoad,
		Status:          string(t.Status),
		Driver:          t.Driver,
		Color:           t.Color,
		BaseDistanceKm:  t.BaseDistanceKm,
		BaseTimeMinutes: t.BaseTimeMinutes,
	}
}

func (d truckDocument) toDomain() domain.Truck {
	return domain.Truck{
		ID:              d.ID.Hex(),
		TruckNumber:     d.TruckNumber,
		Name:            d.Name,
		City:            domain.City(d.City),
		Zone:            d.Zone,
		Capacity:        d.Capacity,
		CurrentLoad:     d.CurrentLoad,
		Status:          domain.TruckStatus(d.Status),
		Driver:          d.Driver,
		Color:           d.Color,
		BaseDistanceKm:  d.BaseDistanceKm,
		BaseTimeMinutes: d.BaseTimeMinutes,
	}
}

// MongoDB-backed implementation of the TruckRepository port.
type MongoTruckRepository struct {
	coll *mongo.Collection
}

func (r *MongoTruckRepository) find(ctx context.Context, op string, filter bson.M) ([]domain.Truck, error) {
	sort := bson.D{{Key: "city", Value: 1}, {Key: "truck_number", Value: 1}}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}

	var docs []truckDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	trucks := make([]domain.Truck, 0, len(docs))
	for _, d := range docs {
		trucks = append(trucks, d.toDomain())
	}
	return trucks, nil
}

func (r *MongoTruckRepository) List(ctx context.Context) ([]domain.Truck, error) {
	return r.find(ctx, "list trucks", bson.M{})
}

func (r *MongoTruckRepository) FindByCity(ctx context.Context, city domain.City) ([]domain.Truck, error) {
	return r.find(ctx, "find trucks by city", bson.M{"city": string(city)})
}

func truckKey(t *domain.Truck) bson.M {
	return bson.M{"city": string(t.City), "truck_number": t.TruckNumber}
}

func (r *MongoTruckRepository) Save(ctx context.Context, truck *domain.Truck) error {
	truck.ApplyDefaults()
	if err := truck.Validate(); err != nil {
		return fmt.Errorf("save truck: %w", err)
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved truckDocument
	err := r.coll.FindOneAndUpdate(ctx, truckKey(truck), bson.M{"$set": newTruckDocument(truck)}, opts).Decode(&saved)
	if err != nil {
		return fmt.Errorf("save truck %s/%d: upsert: %w", truck.City, truck.TruckNumber, err)
	}

	truck.ID = saved.ID.Hex()
	return nil
}

// InsertDefaults upserts with $setOnInsert so an existing truck is never
// overwritten and a concurrent insert loses quietly on the unique index.
func (r *MongoTruckRepository) InsertDefaults(ctx context.Context, city domain.City) ([]domain.Truck, error) {
	defaults, err := domain.DefaultFleet(city)
	if err != nil {
		return nil, fmt.Errorf("insert default trucks: %w", err)
	}

	for i := range defaults {
		t := &defaults[i]
		_, err := r.coll.UpdateOne(ctx,
			truckKey(t),
			bson.M{"$setOnInsert": newTruckDocument(t)},
			options.Update().SetUpsert(true),
		)
		if err != nil && !mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("insert default trucks: truck %d: %w", t.TruckNumber, err)
		}
	}

	return r.FindByCity(ctx, city)
}
