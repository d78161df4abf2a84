package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/appetiteclub/kitchenscreen/services/kitchen/internal/kitchen"
	"github.com/aquamarinepk/aqm"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ordersCollection   = "orders"
	linesCollection    = "order_lines"
	screensCollection  = "screens"
	countersCollection = "counters"
)

// OrderRepo stores kitchen orders, lines and screens. It implements both
// kitchen.OrderRepository and kitchen.ScreenRepository.
type OrderRepo struct {
	client   *mongo.Client
	db       *mongo.Database
	orders   *mongo.Collection
	lines    *mongo.Collection
	screens  *mongo.Collection
	counters *mongo.Collection
	logger   aqm.Logger
	config   *aqm.Config
}

func NewOrderRepo(config *aqm.Config, logger aqm.Logger) *OrderRepo {
	return &OrderRepo{
		logger: logger,
		config: config,
	}
}

func (r *OrderRepo) Start(ctx context.Context) error {
	mongoURL, _ := r.config.GetString("db.mongo.url")
	if mongoURL == "" {
		mongoURL = "mongodb://localhost:27017"
	}

	dbName, _ := r.config.GetString("db.mongo.name")
	if dbName == "" {
		dbName = "kitchenscreen"
	}

	clientOptions := options.Client().ApplyURI(mongoURL).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("cannot connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("cannot ping MongoDB: %w", err)
	}

	r.client = client
	r.db = client.Database(dbName)
	r.orders = r.db.Collection(ordersCollection)
	r.lines = r.db.Collection(linesCollection)
	r.screens = r.db.Collection(screensCollection)
	r.counters = r.db.Collection(countersCollection)

	referenceIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "pos_reference", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := r.orders.Indexes().CreateOne(ctx, referenceIndex); err != nil {
		return fmt.Errorf("cannot create pos_reference index: %w", err)
	}

	shopIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "shop_id", Value: 1}, {Key: "is_cooking", Value: 1}, {Key: "created_at", Value: -1}},
	}
	if _, err := r.orders.Indexes().CreateOne(ctx, shopIndex); err != nil {
		return fmt.Errorf("cannot create shop index: %w", err)
	}

	orderIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "order_id", Value: 1}},
	}
	if _, err := r.lines.Indexes().CreateOne(ctx, orderIndex); err != nil {
		return fmt.Errorf("cannot create order_id index: %w", err)
	}

	r.logger.Infof("Connected to MongoDB: %s, database: %s", mongoURL, dbName)
	return nil
}

func (r *OrderRepo) GetDatabase() *mongo.Database {
	return r.db
}

func (r *OrderRepo) Stop(ctx context.Context) error {
	if r.client != nil {
		if err := r.client.Disconnect(ctx); err != nil {
			return fmt.Errorf("cannot disconnect from MongoDB: %w", err)
		}
		r.logger.Info("Disconnected from MongoDB")
	}
	return nil
}

// nextID hands out sequential integer ids per collection.
func (r *OrderRepo) nextID(ctx context.Context, sequence string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": sequence},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("cannot allocate %s id: %w", sequence, err)
	}
	return counter.Seq, nil
}

func (r *OrderRepo) CreateOrder(ctx context.Context, o *kitchen.Order) error {
	id, err := r.nextID(ctx, ordersCollection)
	if err != nil {
		return err
	}
	o.ID = id
	if o.Name == "" {
		o.Name = fmt.Sprintf("Kitchen/%05d", id)
	}

	if _, err := r.orders.InsertOne(ctx, fromOrder(o)); err != nil {
		return fmt.Errorf("cannot insert order: %w", err)
	}
	return nil
}

func (r *OrderRepo) UpdateOrder(ctx context.Context, o *kitchen.Order) error {
	result, err := r.orders.ReplaceOne(ctx, bson.M{"_id": o.ID}, fromOrder(o))
	if err != nil {
		return fmt.Errorf("cannot update order: %w", err)
	}
	if result.MatchedCount == 0 {
		return kitchen.ErrNotFound
	}
	return nil
}

func (r *OrderRepo) FindOrder(ctx context.Context, id int64) (*kitchen.Order, error) {
	return r.findOrder(ctx, bson.M{"_id": id})
}

func (r *OrderRepo) FindOrderByReference(ctx context.Context, reference string) (*kitchen.Order, error) {
	return r.findOrder(ctx, bson.M{"pos_reference": reference})
}

func (r *OrderRepo) findOrder(ctx context.Context, filter bson.M) (*kitchen.Order, error) {
	var doc orderDoc
	err := r.orders.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, kitchen.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cannot find order: %w", err)
	}
	return doc.toOrder(), nil
}

func (r *OrderRepo) ListCookingOrders(ctx context.Context, shopID int64) ([]kitchen.Order, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.orders.Find(ctx, bson.M{"shop_id": shopID, "is_cooking": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot find orders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []orderDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("cannot decode orders: %w", err)
	}

	orders := make([]kitchen.Order, 0, len(docs))
	for i := range docs {
		orders = append(orders, *docs[i].toOrder())
	}
	return orders, nil
}

func (r *OrderRepo) ClearOrders(ctx context.Context) error {
	if _, err := r.lines.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("cannot delete lines: %w", err)
	}
	if _, err := r.orders.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("cannot delete orders: %w", err)
	}
	return nil
}

func (r *OrderRepo) CreateLines(ctx context.Context, lines []kitchen.OrderLine) error {
	docs := make([]interface{}, 0, len(lines))
	for i := range lines {
		id, err := r.nextID(ctx, linesCollection)
		if err != nil {
			return err
		}
		lines[i].ID = id
		docs = append(docs, fromLine(&lines[i]))
	}
	if len(docs) == 0 {
		return nil
	}

	if _, err := r.lines.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("cannot insert lines: %w", err)
	}
	return nil
}

func (r *OrderRepo) UpdateLine(ctx context.Context, l *kitchen.OrderLine) error {
	result, err := r.lines.ReplaceOne(ctx, bson.M{"_id": l.ID}, fromLine(l))
	if err != nil {
		return fmt.Errorf("cannot update line: %w", err)
	}
	if result.MatchedCount == 0 {
		return kitchen.ErrNotFound
	}
	return nil
}

func (r *OrderRepo) FindLine(ctx context.Context, id int64) (*kitchen.OrderLine, error) {
	var doc lineDoc
	err := r.lines.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, kitchen.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cannot find line: %w", err)
	}
	return doc.toLine(), nil
}

func (r *OrderRepo) ListLines(ctx context.Context, orderIDs []int64) ([]kitchen.OrderLine, error) {
	if len(orderIDs) == 0 {
		return []kitchen.OrderLine{}, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.lines.Find(ctx, bson.M{"order_id": bson.M{"$in": orderIDs}}, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot find lines: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []lineDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("cannot decode lines: %w", err)
	}

	lines := make([]kitchen.OrderLine, 0, len(docs))
	for i := range docs {
		lines = append(lines, *docs[i].toLine())
	}
	return lines, nil
}

func (r *OrderRepo) FindScreen(ctx context.Context, shopID int64) (*kitchen.Screen, error) {
	var doc screenDoc
	err := r.screens.FindOne(ctx, bson.M{"_id": shopID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, kitchen.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cannot find screen: %w", err)
	}
	return doc.toScreen(), nil
}

func (r *OrderRepo) SaveScreen(ctx context.Context, s *kitchen.Screen) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.screens.ReplaceOne(ctx, bson.M{"_id": s.ShopID}, fromScreen(s), opts); err != nil {
		return fmt.Errorf("cannot save screen: %w", err)
	}
	return nil
}

func (r *OrderRepo) ListScreens(ctx context.Context) ([]kitchen.Screen, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.screens.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot find screens: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []screenDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("cannot decode screens: %w", err)
	}

	screens := make([]kitchen.Screen, 0, len(docs))
	for i := range docs {
		screens = append(screens, *docs[i].toScreen())
	}
	return screens, nil
}
