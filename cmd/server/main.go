package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/thexDman/domain-monitoring-devops/pkg/api"
	"github.com/thexDman/domain-monitoring-devops/pkg/auth"
	"github.com/thexDman/domain-monitoring-devops/pkg/config"
	"github.com/thexDman/domain-monitoring-devops/pkg/database"
	"github.com/thexDman/domain-monitoring-devops/pkg/domains"
	"github.com/thexDman/domain-monitoring-devops/pkg/middleware"
	"github.com/thexDman/domain-monitoring-devops/pkg/monitor"
	"github.com/thexDman/domain-monitoring-devops/pkg/notify"
)

// maxUploadSize caps bulk-import uploads.
const maxUploadSize = 1 << 20

var (
	engine   *domains.Engine
	scanner  *monitor.Scanner
	notifier *notify.Notifier
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfgPath := os.Getenv("DOMWATCH_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if err := database.Init(cfg.Database.Path); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	if err := database.SeedAdmin(); err != nil {
		log.Fatal().Err(err).Msg("failed to seed default admin user")
	}

	engine = domains.NewEngine(database.DB)
	scanner = monitor.New(cfg.Scan.Workers, time.Duration(cfg.Scan.TimeoutSeconds)*time.Second, cfg.Scan.Whois)
	notifier = notify.New(cfg.Alerts.WebhookURL)

	r := newRouter()

	log.Info().Str("addr", cfg.Server.Addr).Msg("starting domain monitoring service")
	if err := r.Run(cfg.Server.Addr); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// newRouter wires all API routes. The dashboard's scan trigger issues a
// GET, older automation posts, so the scan handler is mounted on both.
func newRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/api/health", handleHealth)

	// Public authentication routes.
	authPublic := r.Group("/api/auth")
	{
		authPublic.POST("/login", handleLogin)
		authPublic.POST("/register", handleRegister)
	}

	// Protected domain routes.
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/domains", handleListDomains)
		protected.POST("/domains", handleAddDomain)
		protected.DELETE("/domains", handleDeleteDomains)
		protected.POST("/domains/bulk", handleBulkUpload)
		protected.GET("/domains/scan", handleScan)
		protected.POST("/domains/scan", handleScan)
	}

	return r
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"service": "domain-monitoring-backend",
	})
}

// handleLogin authenticates a user and returns a session token.
func handleLogin(c *gin.Context) {
	var body api.LoginRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":    false,
			"error": "invalid request body",
		})
		return
	}

	username := strings.TrimSpace(body.Username)

	var user database.User
	if err := database.DB.Where("username = ?", username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"ok":    false,
			"error": "Invalid username or password",
		})
		return
	}

	if !auth.CheckPassword(user.Password, body.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"ok":    false,
			"error": "Invalid username or password",
		})
		return
	}

	token, err := auth.GenerateToken(user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":    false,
			"error": "failed to generate token",
		})
		return
	}

	log.Info().Str("username", username).Msg("login successful")
	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"username": user.Username,
		"token":    token,
	})
}

// handleRegister creates a new account. All validation, including
// confirmation matching, happens here rather than in any client.
func handleRegister(c *gin.Context) {
	var body api.RegisterRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":    false,
			"error": "invalid request body",
		})
		return
	}

	username := strings.TrimSpace(body.Username)
	if err := auth.ValidateUsername(username); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if err := auth.ValidateRegistrationPassword(body.Password, body.PasswordConfirmation); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	hashed, err := auth.HashPassword(body.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":    false,
			"error": "Registration failed",
		})
		return
	}

	user := database.User{Username: username, Password: hashed}
	if err := database.DB.Create(&user).Error; err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			c.JSON(http.StatusConflict, gin.H{
				"ok":    false,
				"error": "Username already taken.",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":    false,
			"error": "Registration failed",
		})
		return
	}

	log.Info().Str("username", username).Msg("user registered")
	c.JSON(http.StatusCreated, gin.H{
		"ok":      true,
		"message": "Registered successfully",
	})
}

// handleListDomains returns the caller's watch list sorted by domain.
func handleListDomains(c *gin.Context) {
	username := middleware.Username(c)

	records, err := engine.List(username)
	if err != nil {
		log.Error().Str("username", username).Err(err).Msg("list domains failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":    false,
			"error": "Failed to retrieve domains",
		})
		return
	}

	c.JSON(http.StatusOK, api.ListDomainsResponse{OK: true, Domains: records})
}

// handleAddDomain validates and stores a single domain.
func handleAddDomain(c *gin.Context) {
	username := middleware.Username(c)

	var body api.AddDomainRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":    false,
			"error": "invalid request body",
		})
		return
	}

	host, err := engine.Add(username, body.Domain)
	if errors.Is(err, domains.ErrDuplicate) {
		c.JSON(http.StatusConflict, gin.H{
			"ok":    false,
			"error": "Domain already exists",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":    false,
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"ok":     true,
		"domain": host,
	})
}

// handleDeleteDomains removes the given domains from the caller's
// watch list and reports a removed/not-found summary.
func handleDeleteDomains(c *gin.Context) {
	username := middleware.Username(c)

	var body api.DeleteDomainsRequest
	if err := c.ShouldBindJSON(&body); err != nil || len(body.Domains) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":    false,
			"error": "Request must include a non-empty 'domains' list",
		})
		return
	}

	summary, err := engine.Remove(username, body.Domains)
	if err != nil {
		log.Error().Str("username", username).Err(err).Msg("delete domains failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":    false,
			"error": "Delete failed",
		})
		return
	}

	c.JSON(http.StatusOK, api.DeleteDomainsResponse{OK: true, Summary: summary})
}

// handleBulkUpload imports domains from an uploaded text file, one
// domain per line.
func handleBulkUpload(c *gin.Context) {
	username := middleware.Username(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":    false,
			"error": "File is required",
		})
		return
	}

	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".txt") {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":    false,
			"error": "Only .txt files allowed",
		})
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":    false,
			"error": "File is too large",
		})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":    false,
			"error": "Bulk upload failed",
		})
		return
	}
	defer f.Close()

	summary, err := engine.BulkImport(username, f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":    false,
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, api.BulkUploadResponse{OK: true, Summary: summary})
}

// handleScan probes every domain on the caller's watch list with the
// worker pool, persists the results, and reports how many records were
// refreshed.
func handleScan(c *gin.Context) {
	username := middleware.Username(c)

	rows, err := engine.Snapshot(username)
	if err != nil {
		log.Error().Str("username", username).Err(err).Msg("scan failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":    false,
			"error": "Scan failed",
		})
		return
	}

	hosts := make([]string, 0, len(rows))
	for _, row := range rows {
		hosts = append(hosts, row.Domain)
	}

	results := scanner.ScanAll(hosts)

	updated := 0
	for _, result := range results {
		printResult(result)
		rec := api.DomainRecord{
			Domain:        result.Domain,
			Status:        result.Status,
			SSLExpiration: result.SSLExpiration,
			SSLIssuer:     result.SSLIssuer,
		}
		if err := engine.Update(username, rec, result.Registrar); err != nil {
			log.Error().Str("domain", result.Domain).Err(err).Msg("failed to persist scan result")
			continue
		}
		updated++
	}

	printSummary(results)
	notifier.AlertScanResults(username, results)

	log.Info().Str("username", username).Int("updated", updated).Msg("scan finished")
	c.JSON(http.StatusOK, api.ScanResponse{OK: true, Updated: updated})
}

// printResult prints one scan result with a colored status.
func printResult(result monitor.Result) {
	var status string
	switch result.Status {
	case api.StatusLive:
		status = color.GreenString(result.Status)
	case api.StatusExpired:
		status = color.RedString(result.Status)
	case api.StatusDown:
		status = color.RedString(result.Status)
	default:
		status = color.YellowString(result.Status)
	}

	fmt.Printf("Domain: %s | Status: %s | SSL Expiration: %s | Issuer: %s\n",
		result.Domain, status, result.SSLExpiration, result.SSLIssuer)
}

// printSummary prints aggregate scan statistics.
func printSummary(results []monitor.Result) {
	atRisk := 0
	for _, r := range results {
		if r.Status == api.StatusExpired || r.Status == api.StatusDown {
			atRisk++
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Cyan("Scan Summary:")
	fmt.Printf("Total Scanned: %d\n", len(results))
	if atRisk > 0 {
		color.Yellow("At Risk Domains: %d\n", atRisk)
	} else {
		color.Green("At Risk Domains: %d\n", atRisk)
	}
	fmt.Println(strings.Repeat("=", 60))
}
