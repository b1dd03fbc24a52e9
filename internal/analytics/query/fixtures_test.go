package query

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/olist-etl/internal/extract"
	"github.com/angelmondragon/olist-etl/pkg/db/models"
	"github.com/angelmondragon/olist-etl/pkg/enums"
)

func ts(value string) time.Time {
	t, err := time.Parse(time.DateTime, value)
	if err != nil {
		panic(err)
	}
	return t
}

func tsPtr(value string) *time.Time {
	t := ts(value)
	return &t
}

func money(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func weight(g float64) *float64 {
	return &g
}

func order(id string, status enums.OrderStatus, purchased, state string) models.Order {
	return models.Order{OrderID: id, Status: status, PurchaseTimestamp: ts(purchased), CustomerState: state}
}

func deliveredOrder(id, purchased, delivered, estimated, state string) models.Order {
	o := order(id, enums.OrderStatusDelivered, purchased, state)
	o.DeliveredCustomerDate = tsPtr(delivered)
	o.EstimatedDeliveryDate = tsPtr(estimated)
	return o
}

func item(orderID string, seq int, productID, price, freight string) models.OrderItem {
	return models.OrderItem{OrderID: orderID, ItemSeq: seq, ProductID: productID, Price: money(price), FreightValue: money(freight)}
}

func newSources(t *testing.T) *extract.Sources {
	t.Helper()
	s := extract.NewSources()
	s.Mark(models.AllTables...)
	return s
}

// marketplace is a small dataset exercising every transform.
func marketplace(t *testing.T) *extract.Sources {
	s := newSources(t)
	s.Orders = []models.Order{
		deliveredOrder("o1", "2017-01-10 10:00:00", "2017-01-20 22:00:00", "2017-01-25 00:00:00", "SP"),
		deliveredOrder("o2", "2017-01-15 08:00:00", "2017-01-30 08:00:00", "2017-01-28 00:00:00", "SP"),
		deliveredOrder("o3", "2018-02-01 12:00:00", "2018-02-11 12:00:00", "2018-02-21 00:00:00", "RJ"),
		order("o4", enums.OrderStatusCanceled, "2017-01-10 23:59:59", "MG"),
		order("o5", enums.OrderStatusShipped, "2016-10-04 09:00:00", "SP"),
		deliveredOrder("o6", "2016-10-05 09:00:00", "2016-10-20 09:00:00", "2016-11-01 00:00:00", "MG"),
	}
	s.Items = []models.OrderItem{
		item("o1", 1, "p1", "100.00", "10.50"),
		item("o1", 2, "p2", "20.00", "5.25"),
		item("o2", 1, "p1", "50.00", "7.00"),
		item("o3", 1, "p3", "35.10", "4.90"),
		item("o4", 1, "p2", "999.00", "1.00"),
		item("o5", 1, "p3", "10.00", "2.00"),
		item("o6", 1, "missing", "15.00", "3.00"),
	}
	s.Products = []models.Product{
		{ProductID: "p1", CategoryName: "beleza_saude", WeightG: weight(500)},
		{ProductID: "p2", CategoryName: "esporte_lazer", WeightG: nil},
		{ProductID: "p3", CategoryName: "", WeightG: weight(150)},
	}
	s.Translations = []models.CategoryTranslation{
		{CategoryName: "beleza_saude", CategoryNameEnglish: "health_beauty"},
	}
	s.Holidays = []models.Holiday{
		{Date: ts("2017-01-01 00:00:00"), Name: "New Year's Day"},
		{Date: ts("2017-01-10 00:00:00"), Name: "Made-up Day"},
	}
	return s
}
