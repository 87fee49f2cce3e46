package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	_ "ordersvc/docs"
	"ordersvc/pkg/events"
	"ordersvc/pkg/logger"
	"ordersvc/pkg/metrics"
	"ordersvc/pkg/order"
	pg "ordersvc/pkg/order/postgres"
	"ordersvc/pkg/otel"
	"ordersvc/pkg/pricing"
)

var (
	redisClient *redis.Client
	store       order.Store
	workflow    *order.CreationWorkflow
	log         *zap.Logger
	tracer      trace.Tracer
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
	id TEXT PRIMARY KEY,
	customer_id TEXT NOT NULL,
	total_amount NUMERIC(12,2) NOT NULL
);
CREATE TABLE IF NOT EXISTS order_outbox (
	id BIGSERIAL PRIMARY KEY,
	order_id TEXT NOT NULL,
	correlation_id TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	sent_at TIMESTAMPTZ
);`

// @title Order Service API
// @version 1.0
// @description API for creating and querying orders
// @host localhost:8443
// @BasePath /
func main() {
	var err error
	log, err = logger.New("ordersvc")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	tp, shutdown, err := otel.InitTracing(otel.Config{ServiceName: "ordersvc", Host: os.Getenv("OTEL_HOST"), Probability: 1.0})
	if err != nil {
		log.Fatal("init tracing", zap.Error(err))
	}
	defer shutdown(context.Background())
	tracer = tp.Tracer("ordersvc")

	db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	if _, err := db.Exec(schema); err != nil {
		log.Fatal("create tables", zap.Error(err))
	}
	store = pg.New(db)

	redisClient = redis.NewClient(&redis.Options{Addr: os.Getenv("REDIS_ADDR")})

	pricingClient := pricing.NewCachedClient(
		pricing.NewClient(os.Getenv("PRICING_URL")), redisClient, time.Hour)

	writer := events.NewWriter(brokers())
	defer writer.Close()
	publisher := events.NewFallbackPublisher(
		events.NewKafkaPublisher(writer), events.NewOutbox(db), log)

	workflow = order.NewCreationWorkflow(store, pricingClient, publisher,
		order.MultiObserver{order.NewLogObserver(log), metrics.NewObserver()})

	r := mux.NewRouter()
	r.Use(traceMiddleware)
	r.HandleFunc("/login", loginHandler).Methods(http.MethodPost)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/orders").Subrouter()
	api.Use(authMiddleware)
	api.HandleFunc("", createOrderHandler).Methods(http.MethodPost)
	api.HandleFunc("", listOrdersHandler).Methods(http.MethodGet)
	api.HandleFunc("/{id}", getOrderHandler).Methods(http.MethodGet)

	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	addr := os.Getenv("API_ADDR")
	if addr == "" {
		addr = ":8443"
	}
	log.Info("listening", zap.String("addr", addr))
	if err := http.ListenAndServeTLS(addr, "certs/server.crt", "certs/server.key", r); err != nil {
		log.Error("server closed", zap.Error(err))
	}
}

func brokers() []string {
	var out []string
	for _, b := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	if len(out) == 0 {
		out = []string{"localhost:9092"}
	}
	return out
}

// loginHandler handles user login and session creation.
// @Summary Login
// @Description Authenticates user and sets session cookie
// @Accept json
// @Produce json
// @Param creds body loginRequest true "Credentials"
// @Success 200
// @Router /login [post]
func loginHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "loginHandler")
	defer span.End()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		http.Error(w, "invalid credentials", http.StatusBadRequest)
		return
	}
	sid := strconv.FormatInt(time.Now().UnixNano(), 10)
	if err := redisClient.Set(ctx, "session:"+sid, req.Username, time.Hour).Err(); err != nil {
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "session_id", Value: sid, Path: "/", Expires: time.Now().Add(time.Hour), HttpOnly: true})
	w.WriteHeader(http.StatusOK)
}

// authMiddleware ensures a valid session exists.
func authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("session_id")
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		user, err := redisClient.Get(r.Context(), "session:"+c.Value).Result()
		if err != nil || user == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// createOrderHandler dispatches a create-order command to the workflow.
// @Summary Create order
// @Accept json
// @Produce json
// @Param command body order.CreateOrderCommand true "Command"
// @Success 201 {object} order.Order
// @Failure 409 {string} string "order already exists"
// @Failure 503 {string} string "pricing unavailable"
// @Security ApiKeyAuth
// @Router /orders [post]
func createOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "createOrderHandler")
	defer span.End()

	var cmd order.CreateOrderCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if cmd.OrderID == "" || cmd.CustomerID == "" {
		http.Error(w, "orderId and customerId are required", http.StatusBadRequest)
		return
	}

	// The trace id doubles as the correlation token; without an active
	// trace a fresh one still lets subscribers group related events.
	correlationID := otel.GetTraceID(ctx)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	if err := workflow.Handle(ctx, cmd, correlationID); err != nil {
		switch {
		case errors.Is(err, order.ErrDuplicateOrder):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, order.ErrPricingUnavailable):
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
		case errors.Is(err, order.ErrPublicationFailed):
			// The order is durable; only the notification is missing.
			logger.For(ctx, log).Error("create order", zap.Error(err))
			http.Error(w, "order stored but event not published", http.StatusInternalServerError)
		default:
			logger.For(ctx, log).Error("create order", zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"orderId": cmd.OrderID, "correlationId": correlationID})
}

// listOrdersHandler lists orders.
// @Summary List orders
// @Produce json
// @Success 200 {array} order.Order
// @Security ApiKeyAuth
// @Router /orders [get]
func listOrdersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listOrdersHandler")
	defer span.End()

	orders, err := store.List(ctx)
	if err != nil {
		logger.For(ctx, log).Error("list orders", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orders)
}

// getOrderHandler retrieves an order by ID.
// @Summary Get order
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} order.Order
// @Security ApiKeyAuth
// @Router /orders/{id} [get]
func getOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getOrderHandler")
	defer span.End()

	id := mux.Vars(r)["id"]
	o, err := store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		logger.For(ctx, log).Error("get order", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(o)
}

func traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.InjectTracing(r.Context(), tracer)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loginRequest represents login credentials.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
