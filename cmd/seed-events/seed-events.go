package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/eventlake/amplitude-connector/pkg/amplitude"
)

const appName string = "seed-events"

const batchSize int = 100

type product struct {
	id       string
	name     string
	category string
	price    float64
}

var products = []product{
	{"prod_001", "Wireless Headphones", "Electronics", 79.99},
	{"prod_002", "Running Shoes", "Sports", 129.99},
	{"prod_003", "Coffee Maker", "Home", 89.99},
	{"prod_004", "Laptop Backpack", "Accessories", 49.99},
	{"prod_005", "Yoga Mat", "Sports", 29.99},
	{"prod_006", "Smart Watch", "Electronics", 299.99},
	{"prod_007", "Water Bottle", "Sports", 19.99},
	{"prod_008", "Desk Lamp", "Home", 39.99},
	{"prod_009", "Bluetooth Speaker", "Electronics", 59.99},
	{"prod_010", "Tennis Racket", "Sports", 149.99},
	{"prod_011", "Kitchen Knife Set", "Home", 99.99},
	{"prod_012", "Sunglasses", "Accessories", 89.99},
	{"prod_013", "Gaming Mouse", "Electronics", 69.99},
	{"prod_014", "Dumbbells Set", "Sports", 79.99},
	{"prod_015", "Air Purifier", "Home", 199.99},
	{"prod_016", "Leather Wallet", "Accessories", 39.99},
	{"prod_017", "Webcam HD", "Electronics", 89.99},
	{"prod_018", "Resistance Bands", "Sports", 24.99},
	{"prod_019", "Blender", "Home", 69.99},
	{"prod_020", "Phone Case", "Accessories", 19.99},
	{"prod_021", "Mechanical Keyboard", "Electronics", 129.99},
	{"prod_022", "Basketball", "Sports", 34.99},
	{"prod_023", "Toaster", "Home", 49.99},
	{"prod_024", "Travel Pillow", "Accessories", 29.99},
	{"prod_025", "Tablet 10 inch", "Electronics", 349.99},
	{"prod_026", "Camping Tent", "Sports", 179.99},
	{"prod_027", "Vacuum Cleaner", "Home", 229.99},
	{"prod_028", "Backpack Mini", "Accessories", 34.99},
	{"prod_029", "USB-C Hub", "Electronics", 44.99},
	{"prod_030", "Bicycle Helmet", "Sports", 54.99},
}

var (
	platforms      = []string{"iOS", "Android", "Web"}
	countries      = []string{"CZ", "SK", "US", "UK", "DE"}
	categories     = []string{"Electronics", "Sports", "Home", "Accessories"}
	searchTerms    = []string{"headphones", "shoes", "watch", "yoga", "coffee", "bluetooth", "backpack"}
	signupMethods  = []string{"email", "google", "facebook"}
	shareMethods   = []string{"facebook", "twitter", "email", "copy_link"}
	paymentMethods = []string{"credit_card", "paypal", "apple_pay"}
)

func main() {
	appVersion := buildinfo.SourceVersion()

	ctx, log, cleanup := o11y.Init(context.Background(), appName, appVersion, "json")
	defer cleanup()

	client, err := amplitude.NewClient(
		amplitude.APIKey(env.GetVariableOrDefault(ctx, "AMPLITUDE_API_KEY", "test-api-key")),
		amplitude.Endpoints(env.GetVariableOrDefault(ctx, "AMPLITUDE_BASE_URL", "http://localhost:8080")),
	)
	if err != nil {
		log.Error("failed to create amplitude client", "err", err.Error())
		os.Exit(1)
	}
	defer client.Close()

	days := intFromEnv(ctx, "SEED_DAYS", 30)
	users := intFromEnv(ctx, "SEED_USERS", 1000)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	events := make([]amplitude.Event, 0, days*125*12)

	for day := 0; day < days; day++ {
		dailyUsers := min(rng.Intn(151)+50, users)

		for i := 0; i < dailyUsers; i++ {
			events = append(events, userJourney(rng, rng.Intn(users)+1, day)...)
		}
	}

	log.Info("generated events", "count", len(events), "days", days, "users", users)

	for offset := 0; offset < len(events); offset += batchSize {
		batch := events[offset:min(offset+batchSize, len(events))]

		result, err := client.WriteEvents(ctx, batch)
		if err != nil {
			log.Error("failed to upload batch", "offset", offset, "err", err.Error())
			os.Exit(1)
		}

		log.Debug("uploaded batch", "count", result.EventsIngested)

		// stay clear of the per key rate limits
		if offset+batchSize < len(events) {
			time.Sleep(500 * time.Millisecond)
		}
	}

	log.Info("done seeding", "events", len(events))
}

// userJourney generates one visit to the store: a login, some browsing, a
// cart, and for some of the visits a purchase. Each step moves the clock a
// little further into the day.
func userJourney(rng *rand.Rand, userNumber, daysAgo int) []amplitude.Event {
	userID := fmt.Sprintf("user_%04d", userNumber)
	deviceID := fmt.Sprintf("device_%04d", userNumber)
	platform := pick(rng, platforms)
	country := pick(rng, countries)

	base := time.Now().AddDate(0, 0, -daysAgo)
	journey := make([]amplitude.Event, 0, 24)

	event := func(eventType string, hours float64, extra ...amplitude.EventDecoratorFunc) {
		decorators := append([]amplitude.EventDecoratorFunc{
			amplitude.User(userID),
			amplitude.Device(deviceID),
			amplitude.Platform(platform),
			amplitude.Country(country),
			amplitude.At(base.Add(time.Duration(hours * float64(time.Hour)))),
			amplitude.UniqueInsertID(),
		}, extra...)

		journey = append(journey, amplitude.NewEvent(eventType, decorators...))
	}

	if rng.Float64() < 0.3 {
		event("Sign up", 0,
			amplitude.UserProperty("country", country),
			amplitude.UserProperty("signup_method", pick(rng, signupMethods)))
	}

	event("Login", 1, amplitude.UserProperty("country", country))

	views := rng.Intn(13) + 3
	for i := 0; i < views; i++ {
		p := pick(rng, products)
		event("View Product", 1+0.1*float64(i),
			amplitude.Property("product_id", p.id),
			amplitude.Property("product_name", p.name),
			amplitude.Property("category", p.category),
			amplitude.Property("price", p.price))
	}

	if rng.Float64() < 0.5 {
		event("View Category", 1.5, amplitude.Property("category", pick(rng, categories)))
	}

	if rng.Float64() < 0.4 {
		event("Search", 2, amplitude.Property("search_query", pick(rng, searchTerms)))
	}

	if rng.Float64() < 0.3 {
		p := pick(rng, products)
		event("Add to Wishlist", 2.2,
			amplitude.Property("product_id", p.id),
			amplitude.Property("product_name", p.name),
			amplitude.Property("price", p.price))
	}

	if rng.Float64() < 0.2 {
		p := pick(rng, products)
		event("Rate Product", 2.5,
			amplitude.Property("product_id", p.id),
			amplitude.Property("product_name", p.name),
			amplitude.Property("rating", rng.Intn(3)+3))
	}

	if rng.Float64() < 0.15 {
		p := pick(rng, products)
		event("Share Product", 2.7,
			amplitude.Property("product_id", p.id),
			amplitude.Property("product_name", p.name),
			amplitude.Property("share_method", pick(rng, shareMethods)))
	}

	cart := sample(rng, products, rng.Intn(3)+1)
	for _, item := range cart {
		event("Add to Cart", 3,
			amplitude.Property("product_id", item.id),
			amplitude.Property("product_name", item.name),
			amplitude.Property("price", item.price),
			amplitude.Property("quantity", rng.Intn(3)+1))
	}

	if rng.Float64() < 0.3 && len(cart) > 1 {
		removed := cart[0]
		event("Remove from Cart", 3.5,
			amplitude.Property("product_id", removed.id),
			amplitude.Property("product_name", removed.name))
		cart = cart[1:]
	}

	if rng.Float64() < 0.6 {
		total := 0.0
		for _, item := range cart {
			total += item.price
		}

		event("Start Checkout", 4,
			amplitude.Property("cart_total", total),
			amplitude.Property("items_count", len(cart)))

		event("Complete Purchase", 4.5,
			amplitude.TotalRevenue(total),
			amplitude.Property("revenue", total),
			amplitude.Property("items_count", len(cart)),
			amplitude.Property("payment_method", pick(rng, paymentMethods)))
	}

	if rng.Float64() < 0.7 {
		event("Logout", 5)
	}

	return journey
}

func pick[T any](rng *rand.Rand, from []T) T {
	return from[rng.Intn(len(from))]
}

func sample(rng *rand.Rand, from []product, n int) []product {
	picked := make([]product, len(from))
	copy(picked, from)

	rng.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})

	return picked[:n]
}

func intFromEnv(ctx context.Context, name string, defaultValue int) int {
	value, err := strconv.Atoi(env.GetVariableOrDefault(ctx, name, strconv.Itoa(defaultValue)))
	if err != nil {
		return defaultValue
	}

	return value
}
