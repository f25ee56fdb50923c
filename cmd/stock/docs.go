package main

// @title Stock Service API
// @version 1.0
// @description Lots, portions and sales with per-lot consistency and full observability (logging, tracing, metrics)
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://github.com/tair/stock-ledger
// @contact.email support@example.com

// @license.name MIT
// @license.url https://github.com/tair/stock-ledger/blob/main/LICENSE

// @host localhost:8084
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name Lots
// @tag.description Bulk stock lots

// @tag.name Portions
// @tag.description Portions carved out of lots and sold by unit

// @tag.name Sales
// @tag.description Disposal records

// @tag.name Summary
// @tag.description Stock and profit summary

// @tag.name Health
// @tag.description Health check endpoints

// @tag.name Swagger
// @tag.description Swagger documentation endpoints
