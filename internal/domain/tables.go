package domain

// Tables lists the models migrated at startup, parents before children
var Tables = []interface{}{
	// Catalog
	&Customer{},
	&Product{},
	// Orders
	&Order{},
	&OrderItem{},
	// System
	&User{},
	&AuditLog{},
}
