package extract

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/olist-etl/internal/analytics"
	"github.com/angelmondragon/olist-etl/pkg/db/models"
	"github.com/angelmondragon/olist-etl/pkg/enums"
	pkgerrors "github.com/angelmondragon/olist-etl/pkg/errors"
	"github.com/angelmondragon/olist-etl/pkg/holidays"
)

const utf8BOM = "\ufeff"

type csvTable struct {
	required []string
	decode   func(rec csvRecord, s *Sources) error
}

var csvTables = map[string]csvTable{
	models.TableOrders: {
		required: []string{"order_id", "order_status", "order_purchase_timestamp"},
		decode:   decodeOrder,
	},
	models.TableOrderItems: {
		required: []string{"order_id", "product_id", "price", "freight_value"},
		decode:   decodeOrderItem,
	},
	models.TableProducts: {
		required: []string{"product_id"},
		decode:   decodeProduct,
	},
	models.TableCustomers: {
		required: []string{"customer_id", "customer_state"},
		decode:   decodeCustomer,
	},
	models.TableTranslations: {
		required: []string{"product_category_name", "product_category_name_english"},
		decode:   decodeTranslation,
	},
	models.TableHolidays: {
		required: []string{"date", "name"},
		decode:   decodeHoliday,
	},
}

// LoadCSV reads every file of mapping (csv file name relative to dir ->
// logical table name). Files mapped to an unknown table are skipped.
func (s *Service) LoadCSV(ctx context.Context, dir string, mapping map[string]string) (*Sources, error) {
	sources := NewSources()

	files := make([]string, 0, len(mapping))
	for file := range mapping {
		files = append(files, file)
	}
	sort.Strings(files)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		table := mapping[file]
		tableCtx := s.logg.WithTable(ctx, table)

		layout, ok := csvTables[table]
		if !ok {
			s.logg.Warn(s.logg.WithField(tableCtx, "file", file), "skipping csv mapped to unknown table")
			continue
		}

		path := filepath.Join(dir, file)
		rows, header, err := readCSVFile(path, table, layout, sources)
		if err != nil {
			return nil, err
		}
		sources.MarkColumns(table, header...)
		s.logg.Info(s.logg.WithFields(tableCtx, map[string]any{"file": path, "rows": rows}), "csv table loaded")
	}

	return sources, nil
}

func readCSVFile(path, table string, layout csvTable, sources *Sources) (int, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil, pkgerrors.Wrap(pkgerrors.CodeSourceLoad, err, fmt.Sprintf("open %s", path))
	}
	defer f.Close()

	return decodeCSV(f, path, table, layout, sources)
}

// decodeCSV returns the decoded row count and the cleaned header.
func decodeCSV(r io.Reader, path, table string, layout csvTable, sources *Sources) (int, []string, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	raw, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil, pkgerrors.New(pkgerrors.CodeSourceLoad, fmt.Sprintf("%s is empty", path))
		}
		return 0, nil, pkgerrors.Wrap(pkgerrors.CodeSourceLoad, err, fmt.Sprintf("read header of %s", path))
	}

	header := make([]string, len(raw))
	columns := make(map[string]int, len(raw))
	for i, name := range raw {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		header[i] = strings.TrimSpace(name)
		columns[header[i]] = i
	}

	var missing []string
	for _, col := range layout.required {
		if _, ok := columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return 0, nil, pkgerrors.New(pkgerrors.CodeSchema, fmt.Sprintf("%s: table %s is missing columns %s", path, table, strings.Join(missing, ", "))).
			WithDetails(map[string]any{"table": table, "missing": missing})
	}

	rows := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, nil, pkgerrors.Wrap(pkgerrors.CodeSourceLoad, err, fmt.Sprintf("read %s", path))
		}
		if err := layout.decode(csvRecord{columns: columns, values: record}, sources); err != nil {
			line, _ := reader.FieldPos(0)
			return rows, nil, pkgerrors.Wrap(pkgerrors.CodeSourceLoad, err, fmt.Sprintf("%s line %d", path, line))
		}
		rows++
	}
	return rows, header, nil
}

type csvRecord struct {
	columns map[string]int
	values  []string
}

func (r csvRecord) get(column string) string {
	idx, ok := r.columns[column]
	if !ok || idx >= len(r.values) {
		return ""
	}
	return strings.TrimSpace(r.values[idx])
}

func (r csvRecord) required(column string) (string, error) {
	value := r.get(column)
	if value == "" {
		return "", fmt.Errorf("%s is empty", column)
	}
	return value, nil
}

func (r csvRecord) timestamp(column string) (*time.Time, error) {
	value := r.get(column)
	if value == "" {
		return nil, nil
	}
	t, err := analytics.ParseTimestamp(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", column, err)
	}
	return &t, nil
}

func (r csvRecord) money(column string) (decimal.Decimal, error) {
	value, err := r.required(column)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", column, err)
	}
	return d, nil
}

func (r csvRecord) float(column string) (*float64, error) {
	value := r.get(column)
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", column, err)
	}
	return &f, nil
}

func decodeOrder(rec csvRecord, s *Sources) error {
	id, err := rec.required("order_id")
	if err != nil {
		return err
	}
	status, err := rec.required("order_status")
	if err != nil {
		return err
	}
	purchased, err := rec.timestamp("order_purchase_timestamp")
	if err != nil {
		return err
	}
	if purchased == nil {
		return fmt.Errorf("order_purchase_timestamp is empty")
	}

	order := models.Order{
		OrderID:           id,
		CustomerID:        rec.get("customer_id"),
		Status:            enums.OrderStatus(status),
		PurchaseTimestamp: *purchased,
		CustomerState:     rec.get("customer_state"),
	}
	if order.ApprovedAt, err = rec.timestamp("order_approved_at"); err != nil {
		return err
	}
	if order.DeliveredCarrierDate, err = rec.timestamp("order_delivered_carrier_date"); err != nil {
		return err
	}
	if order.DeliveredCustomerDate, err = rec.timestamp("order_delivered_customer_date"); err != nil {
		return err
	}
	if order.EstimatedDeliveryDate, err = rec.timestamp("order_estimated_delivery_date"); err != nil {
		return err
	}

	s.Orders = append(s.Orders, order)
	return nil
}

func decodeOrderItem(rec csvRecord, s *Sources) error {
	orderID, err := rec.required("order_id")
	if err != nil {
		return err
	}
	productID, err := rec.required("product_id")
	if err != nil {
		return err
	}
	price, err := rec.money("price")
	if err != nil {
		return err
	}
	freight, err := rec.money("freight_value")
	if err != nil {
		return err
	}
	if freight.IsNegative() {
		return fmt.Errorf("freight_value %s is negative", freight)
	}

	seq := len(s.Items) + 1
	if raw := rec.get("order_item_id"); raw != "" {
		if seq, err = strconv.Atoi(raw); err != nil {
			return fmt.Errorf("order_item_id: %w", err)
		}
	}
	shipping, err := rec.timestamp("shipping_limit_date")
	if err != nil {
		return err
	}

	s.Items = append(s.Items, models.OrderItem{
		OrderID:           orderID,
		ItemSeq:           seq,
		ProductID:         productID,
		SellerID:          rec.get("seller_id"),
		ShippingLimitDate: shipping,
		Price:             price,
		FreightValue:      freight,
	})
	return nil
}

func decodeProduct(rec csvRecord, s *Sources) error {
	id, err := rec.required("product_id")
	if err != nil {
		return err
	}
	weight, err := rec.float("product_weight_g")
	if err != nil {
		return err
	}
	if weight != nil && *weight < 0 {
		return fmt.Errorf("product_weight_g %v is negative", *weight)
	}

	s.Products = append(s.Products, models.Product{
		ProductID:    id,
		CategoryName: rec.get("product_category_name"),
		WeightG:      weight,
	})
	return nil
}

func decodeCustomer(rec csvRecord, s *Sources) error {
	id, err := rec.required("customer_id")
	if err != nil {
		return err
	}
	s.Customers = append(s.Customers, models.Customer{
		CustomerID:       id,
		CustomerUniqueID: rec.get("customer_unique_id"),
		ZipCodePrefix:    rec.get("customer_zip_code_prefix"),
		City:             rec.get("customer_city"),
		State:            rec.get("customer_state"),
	})
	return nil
}

func decodeTranslation(rec csvRecord, s *Sources) error {
	name, err := rec.required("product_category_name")
	if err != nil {
		return err
	}
	s.Translations = append(s.Translations, models.CategoryTranslation{
		CategoryName:        name,
		CategoryNameEnglish: rec.get("product_category_name_english"),
	})
	return nil
}

func decodeHoliday(rec csvRecord, s *Sources) error {
	raw, err := rec.required("date")
	if err != nil {
		return err
	}
	day, err := holidays.ParseDay(raw)
	if err != nil {
		return err
	}
	holiday := models.Holiday{
		Date:        day,
		LocalName:   rec.get("localName"),
		Name:        rec.get("name"),
		CountryCode: rec.get("countryCode"),
		Fixed:       parseBool(rec.get("fixed")),
		Global:      parseBool(rec.get("global")),
	}
	if raw := rec.get("launchYear"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("launchYear: %w", err)
		}
		holiday.LaunchYear = &year
	}
	s.Holidays = append(s.Holidays, holiday)
	return nil
}

func parseBool(value string) bool {
	b, _ := strconv.ParseBool(value)
	return b
}
