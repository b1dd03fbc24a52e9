package models

// Relational table names shared by the csv mapping, the warehouse loader and
// the database source.
const (
	TableOrders       = "olist_orders"
	TableOrderItems   = "olist_order_items"
	TableProducts     = "olist_products"
	TableCustomers    = "olist_customers"
	TableTranslations = "product_category_name_translation"
	TableHolidays     = "public_holidays"
)

// AllTables lists every table in load order.
var AllTables = []string{
	TableCustomers,
	TableOrders,
	TableOrderItems,
	TableProducts,
	TableTranslations,
	TableHolidays,
}
