package repository

import (
	"time"

	"github.com/BerniceZTT/salesiq/models"
)

// Seed 示例数据集
type Seed struct {
	Customers     []models.Customer
	Users         []models.User
	Integrations  []models.APIIntegration
	Sales         []models.SalesRecord
	Monthly       []models.MonthlyMetric
	Regions       []models.RegionMetric
	Notifications models.NotificationSettings
}

func day(value string) time.Time {
	t, err := time.Parse(models.DateLayout, value)
	if err != nil {
		panic(err)
	}
	return t
}

func instant(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

// SeedData 返回一份新的示例数据，调用方可以随意修改
func SeedData() Seed {
	return Seed{
		Customers: []models.Customer{
			{ID: "1", Name: "Acme Corp", Email: "contact@acme.com", TotalSpent: 15499.50, OrderCount: 12, LastOrderDate: day("2024-01-15"), Segment: models.SegmentHighValue},
			{ID: "2", Name: "Tech Solutions Inc", Email: "info@techsolutions.com", TotalSpent: 8999.70, OrderCount: 8, LastOrderDate: day("2024-01-16"), Segment: models.SegmentRegular},
			{ID: "3", Name: "Global Enterprises", Email: "sales@global.com", TotalSpent: 25999.89, OrderCount: 18, LastOrderDate: day("2024-01-17"), Segment: models.SegmentHighValue},
			{ID: "4", Name: "StartupXYZ", Email: "hello@startupxyz.com", TotalSpent: 2999.60, OrderCount: 3, LastOrderDate: day("2024-01-18"), Segment: models.SegmentNew},
			{ID: "5", Name: "Enterprise Plus", Email: "orders@enterpriseplus.com", TotalSpent: 45699.85, OrderCount: 25, LastOrderDate: day("2024-01-19"), Segment: models.SegmentHighValue},
		},
		Users: []models.User{
			{
				ID: "1", Name: "Anna Andersson", Email: "anna@företag.se", Phone: "+46701234567",
				Role: models.UserRoleAdmin, Department: "Management", LastLogin: day("2024-01-20"), IsActive: true,
				Permissions: models.Permissions{ViewDashboard: true, ViewCustomers: true, ViewReports: true, ManageUsers: true, ExportData: true, ImportData: true},
			},
			{
				ID: "2", Name: "Erik Eriksson", Email: "erik@företag.se", Phone: "+46709876543",
				Role: models.UserRoleManager, Department: "Sales", LastLogin: day("2024-01-19"), IsActive: true,
				Permissions: models.Permissions{ViewDashboard: true, ViewCustomers: true, ViewReports: true, ExportData: true, ImportData: true},
			},
			{
				ID: "3", Name: "Maria Nilsson", Email: "maria@företag.se", Phone: "+46705555555",
				Role: models.UserRoleViewer, Department: "Marketing", LastLogin: day("2024-01-18"), IsActive: true,
				Permissions: models.Permissions{ViewDashboard: true, ViewReports: true},
			},
		},
		Integrations: []models.APIIntegration{
			{ID: "1", Name: "Shopify Store", Type: models.IntegrationShopify, Status: models.IntegrationConnected, LastSync: instant("2024-01-20T10:30:00Z"), APIKey: "sk_live_51HxShopifyDemoKey"},
			{ID: "2", Name: "Stripe Payments", Type: models.IntegrationStripe, Status: models.IntegrationConnected, LastSync: instant("2024-01-20T09:15:00Z"), APIKey: "pk_live_51HxStripeDemoKey"},
			{ID: "3", Name: "WooCommerce", Type: models.IntegrationWooCommerce, Status: models.IntegrationDisconnected, LastSync: instant("2024-01-15T14:20:00Z")},
		},
		Sales: []models.SalesRecord{
			{ID: "1", Date: day("2024-01-15"), Customer: "Acme Corp", CustomerEmail: "contact@acme.com", Product: "Premium Widget", Category: "Electronics", Quantity: 5, UnitPrice: 299.99, TotalAmount: 1499.95, Region: "North", SalesRep: "John Smith"},
			{ID: "2", Date: day("2024-01-16"), Customer: "Tech Solutions Inc", CustomerEmail: "info@techsolutions.com", Product: "Standard Widget", Category: "Electronics", Quantity: 10, UnitPrice: 199.99, TotalAmount: 1999.90, Region: "South", SalesRep: "Sarah Johnson"},
			{ID: "3", Date: day("2024-01-17"), Customer: "Global Enterprises", CustomerEmail: "sales@global.com", Product: "Pro Service", Category: "Services", Quantity: 1, UnitPrice: 2499.99, TotalAmount: 2499.99, Region: "East", SalesRep: "Mike Wilson"},
			{ID: "4", Date: day("2024-01-18"), Customer: "StartupXYZ", CustomerEmail: "hello@startupxyz.com", Product: "Basic Widget", Category: "Electronics", Quantity: 20, UnitPrice: 99.99, TotalAmount: 1999.80, Region: "West", SalesRep: "John Smith"},
			{ID: "5", Date: day("2024-01-19"), Customer: "Enterprise Plus", CustomerEmail: "orders@enterpriseplus.com", Product: "Premium Service", Category: "Services", Quantity: 3, UnitPrice: 1899.99, TotalAmount: 5699.97, Region: "North", SalesRep: "Sarah Johnson"},
		},
		Monthly: []models.MonthlyMetric{
			{Month: "Jan", Sales: 65000, Customers: 120, Orders: 245},
			{Month: "Feb", Sales: 78000, Customers: 135, Orders: 289},
			{Month: "Mar", Sales: 92000, Customers: 158, Orders: 334},
			{Month: "Apr", Sales: 85000, Customers: 142, Orders: 298},
			{Month: "May", Sales: 101000, Customers: 172, Orders: 387},
			{Month: "Jun", Sales: 118000, Customers: 198, Orders: 445},
			{Month: "Jul", Sales: 125000, Customers: 215, Orders: 478},
			{Month: "Aug", Sales: 135000, Customers: 234, Orders: 521},
			{Month: "Sep", Sales: 142000, Customers: 248, Orders: 556},
			{Month: "Oct", Sales: 158000, Customers: 267, Orders: 612},
			{Month: "Nov", Sales: 171000, Customers: 289, Orders: 665},
			{Month: "Dec", Sales: 195000, Customers: 312, Orders: 745},
		},
		Regions: []models.RegionMetric{
			{Region: "North", Sales: 485000, Percentage: 32.5},
			{Region: "South", Sales: 412000, Percentage: 27.6},
			{Region: "East", Sales: 358000, Percentage: 24.0},
			{Region: "West", Sales: 237000, Percentage: 15.9},
		},
		Notifications: models.NotificationSettings{
			Enabled:   true,
			Phone:     "+46701234567",
			ReportDay: "friday",
			Metrics:   []string{"revenue", "customers", "orders"},
		},
	}
}
