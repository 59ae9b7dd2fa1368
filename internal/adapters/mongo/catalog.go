package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/barani-presidio/hotel-booking/internal/domain"
	"github.com/barani-presidio/hotel-booking/internal/observability"
)

// CatalogRepository reads the hotel catalog. The reservation core treats the
// catalog as an external collaborator: it fetches a hotel fresh before every
// reservation attempt and never writes capacity back.
type CatalogRepository struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewCatalogRepository(db *mongo.Database, logger observability.Logger) *CatalogRepository {
	return &CatalogRepository{
		coll:   db.Collection("hotels"),
		logger: logger,
	}
}

type HotelDoc struct {
	ID                 uuid.UUID `bson:"_id" json:"id"`
	Name               string    `bson:"name" json:"name"`
	Description        string    `bson:"description" json:"description"`
	Location           string    `bson:"location" json:"location"`
	PricePerNightMinor int64     `bson:"price_per_night_minor" json:"price_per_night_minor"`
	Amenities          []string  `bson:"amenities" json:"amenities"`
	Images             []string  `bson:"images" json:"images"`
	Rating             float64   `bson:"rating" json:"rating"`
	TotalRooms         int       `bson:"total_rooms" json:"total_rooms"`
	CreatedAt          time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time `bson:"updated_at" json:"updated_at"`
}

func (d HotelDoc) toDomain() *domain.Hotel {
	return &domain.Hotel{
		ID:                 d.ID,
		Name:               d.Name,
		Location:           d.Location,
		TotalRooms:         d.TotalRooms,
		PricePerNightMinor: d.PricePerNightMinor,
	}
}

func (c *CatalogRepository) GetHotel(ctx context.Context, id uuid.UUID) (*domain.Hotel, error) {
	var doc HotelDoc
	err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		c.logger.Error("failed to get hotel", err)
		return nil, err
	}
	return doc.toDomain(), nil
}

func (c *CatalogRepository) GetHotelDoc(ctx context.Context, id uuid.UUID) (*HotelDoc, error) {
	var doc HotelDoc
	err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		c.logger.Error("failed to get hotel", err)
		return nil, err
	}
	return &doc, nil
}

func (c *CatalogRepository) ListHotels(ctx context.Context) ([]HotelDoc, error) {
	cur, err := c.coll.Find(ctx, bson.M{})
	if err != nil {
		c.logger.Error("failed to list hotels", err)
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []HotelDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *CatalogRepository) CreateHotel(ctx context.Context, doc HotelDoc) error {
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = time.Now()
	_, err := c.coll.InsertOne(ctx, doc)
	if err != nil {
		c.logger.Error("failed to create hotel", err)
		return err
	}
	return nil
}
