package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/voicedesk/internal/domain"
	"github.com/vladislavdragonenkov/voicedesk/internal/service/webhook"
)

const maxSearchLimit = 50

// Handler обслуживает JSON API голосового ассистента. Все ответы
// одинаковы по форме независимо от того, какой бэкенд хранилища
// их обработал.
type Handler struct {
	gateway    domain.StoreGateway
	webhookSvc *webhook.Service
	timeline   domain.ConversationTimeline
	config     PublicConfig
	logger     *log.Entry
}

// PublicConfig — безопасная для фронтенда часть конфигурации.
type PublicConfig struct {
	AssistantName string `json:"assistant_name"`
	Language      string `json:"language"`
	StoreName     string `json:"store_name"`
	AssistantID   string `json:"assistant_id,omitempty"`
}

// NewHandler создаёт обработчики API.
func NewHandler(gateway domain.StoreGateway, webhookSvc *webhook.Service, timeline domain.ConversationTimeline, config PublicConfig, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.WithField("component", "httpapi")
	}
	return &Handler{
		gateway:    gateway,
		webhookSvc: webhookSvc,
		timeline:   timeline,
		config:     config,
		logger:     logger,
	}
}

// SearchProducts обрабатывает GET /products/search.
func (h *Handler) SearchProducts(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}
	limit := parseLimit(c.Query("limit"))

	var (
		products []domain.Product
		err      error
	)
	if isTruthy(c.Query("fts")) {
		products, err = h.gateway.SearchProductsFTS(c.Request.Context(), query, limit)
	} else {
		products, err = h.gateway.SearchProducts(c.Request.Context(), query, limit)
	}
	if err != nil {
		h.logger.WithError(err).Error("product search failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "product search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": toProductViews(products),
		"count":    len(products),
	})
}

// GetProduct обрабатывает GET /products/:ident.
func (h *Handler) GetProduct(c *gin.Context) {
	ident := c.Param("ident")

	product, err := h.gateway.GetProductBySKUOrName(c.Request.Context(), ident)
	if err != nil {
		if domain.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		h.logger.WithError(err).Error("product lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "product lookup failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": toProductView(product)})
}

// CheckAvailability обрабатывает GET /availability.
func (h *Handler) CheckAvailability(c *gin.Context) {
	at, err := time.Parse(time.RFC3339, c.Query("at"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'at' must be RFC3339"})
		return
	}
	duration := parseDuration(c.Query("duration"))

	available, err := h.gateway.CheckAvailability(c.Request.Context(), at, duration)
	if err != nil {
		h.logger.WithError(err).Error("availability check failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "availability check failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"available":        available,
		"at":               at,
		"duration_minutes": duration,
	})
}

// GetAvailableSlots обрабатывает GET /appointments/slots.
func (h *Handler) GetAvailableSlots(c *gin.Context) {
	date := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'date' must be YYYY-MM-DD"})
			return
		}
		date = parsed
	}
	serviceType := c.Query("service")
	duration := parseDuration(c.Query("duration"))

	slots, err := h.gateway.GetAvailableSlots(c.Request.Context(), date, serviceType, duration)
	if err != nil {
		h.logger.WithError(err).Error("slot listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "slot listing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"slots": toSlotViews(slots),
		"count": len(slots),
	})
}

// CreateAppointment обрабатывает POST /appointments.
func (h *Handler) CreateAppointment(c *gin.Context) {
	var req appointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	domainReq := req.toDomain()
	if errs := domainReq.ValidateInvariants(); len(errs) > 0 {
		messages := make([]string, 0, len(errs))
		for _, err := range errs {
			messages = append(messages, err.Error())
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": strings.Join(messages, "; ")})
		return
	}

	appointment, err := h.gateway.CreateAppointment(c.Request.Context(), domainReq)
	if err != nil {
		if errors.Is(err, domain.ErrSlotUnavailable) {
			c.JSON(http.StatusConflict, gin.H{"error": "requested slot is not available"})
			return
		}
		h.logger.WithError(err).Error("appointment creation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "appointment creation failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"appointment": toAppointmentView(appointment)})
}

// GetCustomer обрабатывает GET /customers/:phone.
func (h *Handler) GetCustomer(c *gin.Context) {
	phone := c.Param("phone")

	customer, err := h.gateway.GetCustomerByPhone(c.Request.Context(), phone)
	if err != nil {
		if domain.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		h.logger.WithError(err).Error("customer lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "customer lookup failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"customer": toCustomerView(customer)})
}

// GetCustomerOrders обрабатывает GET /customers/:phone/orders.
func (h *Handler) GetCustomerOrders(c *gin.Context) {
	phone := c.Param("phone")
	limit := parseLimit(c.Query("limit"))

	orders, err := h.gateway.GetCustomerOrderHistory(c.Request.Context(), phone, limit)
	if err != nil {
		if domain.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		h.logger.WithError(err).Error("order history lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "order history lookup failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": toOrderViews(orders),
		"count":  len(orders),
	})
}

// SearchCustomers обрабатывает GET /customers/search.
func (h *Handler) SearchCustomers(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'name' is required"})
		return
	}
	limit := parseLimit(c.Query("limit"))

	customers, err := h.gateway.SearchCustomersByName(c.Request.Context(), name, limit)
	if err != nil {
		h.logger.WithError(err).Error("customer search failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "customer search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"customers": toCustomerViews(customers),
		"count":     len(customers),
	})
}

// GetTimeline обрабатывает GET /conversations/:callID/timeline.
func (h *Handler) GetTimeline(c *gin.Context) {
	if h.timeline == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "timeline is not enabled"})
		return
	}

	entries, err := h.timeline.List(c.Param("callID"))
	if err != nil {
		h.logger.WithError(err).Error("timeline lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "timeline lookup failed"})
		return
	}

	views := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		views = append(views, gin.H{
			"type":     e.Type,
			"reason":   e.Reason,
			"occurred": e.Occurred,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"call_id": c.Param("callID"),
		"events":  views,
	})
}

// GetConfig обрабатывает GET /config.
func (h *Handler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"config": h.config})
}

// HandleVapiWebhook обрабатывает POST /webhooks/vapi. Вендор повторяет
// доставку при любом не-2xx, поэтому ошибки хранилища возвращаются
// как 500, а всё остальное подтверждается.
func (h *Handler) HandleVapiWebhook(c *gin.Context) {
	var envelope struct {
		Message webhook.Message `json:"message"`
	}
	if err := c.ShouldBindJSON(&envelope); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook payload"})
		return
	}

	result, err := h.webhookSvc.Handle(c.Request.Context(), envelope.Message)
	if err != nil {
		if errors.Is(err, domain.ErrCallIDRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "call id is required"})
			return
		}
		h.logger.WithError(err).Error("webhook processing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"received":  true,
		"duplicate": result.Duplicate,
	})
}

func parseLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return domain.DefaultSearchLimit
	}
	if limit > maxSearchLimit {
		return maxSearchLimit
	}
	return limit
}

func parseDuration(raw string) int {
	duration, err := strconv.Atoi(raw)
	if err != nil || duration <= 0 {
		return domain.DefaultSlotMinutes
	}
	return duration
}

func isTruthy(raw string) bool {
	switch strings.ToLower(raw) {
	case "1", "true", "yes":
		return true
	}
	return false
}
