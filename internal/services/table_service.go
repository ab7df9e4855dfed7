package services

import (
	"database/sql"
	"errors"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"dineqr_backend/internal/models"
	"dineqr_backend/internal/repositories"
)

// --- DTOs ---

// CreateTableRequest registers a physical table.
type CreateTableRequest struct {
	TableNumber string  `json:"table_number" binding:"required"`
	TableName   *string `json:"table_name"`
	Capacity    int     `json:"capacity" binding:"required,gt=0"`
	Location    *string `json:"location"`
}

// UpdateTableRequest patches a table.
type UpdateTableRequest struct {
	TableName     *string `json:"table_name"`
	Capacity      *int    `json:"capacity" binding:"omitempty,gt=0"`
	Location      *string `json:"location"`
	IsActive      *bool   `json:"is_active"`
	CurrentStatus *string `json:"current_status"`
}

// --- TableService Interface ---

type TableService interface {
	Create(actor *Actor, restaurantID int64, req CreateTableRequest) (*models.RestaurantTable, error)
	GetByID(actor *Actor, tableID int64) (*models.RestaurantTable, error)
	List(actor *Actor, restaurantID int64, activeOnly bool, page, pageSize int) ([]models.RestaurantTable, int, error)
	Update(actor *Actor, tableID int64, req UpdateTableRequest) (*models.RestaurantTable, error)
	Delete(actor *Actor, tableID int64) error
	RenderQRCode(actor *Actor, tableID int64, size int) ([]byte, error)
	ResolveQR(qrCode string) (*models.RestaurantTable, *models.Restaurant, error)
}

type tableService struct {
	tableRepo      repositories.TableRepository
	restaurantRepo repositories.RestaurantRepository
	authz          AuthzService
	db             *sql.DB
}

// NewTableService creates a new instance of TableService.
func NewTableService(tableRepo repositories.TableRepository, restaurantRepo repositories.RestaurantRepository, authz AuthzService, db *sql.DB) TableService {
	return &tableService{
		tableRepo:      tableRepo,
		restaurantRepo: restaurantRepo,
		authz:          authz,
		db:             db,
	}
}

// buildQRPayload derives the stable QR string embedded in printed codes.
// Uniqueness across tenants comes from the restaurant code component.
func buildQRPayload(restaurantCode, tableNumber string) string {
	return fmt.Sprintf("QR_%s_%s", restaurantCode, tableNumber)
}

func (s *tableService) Create(actor *Actor, restaurantID int64, req CreateTableRequest) (*models.RestaurantTable, error) {
	if err := s.authz.Require(actor, CapManageTables); err != nil {
		return nil, err
	}
	if err := s.authz.RequireRestaurant(actor, restaurantID); err != nil {
		return nil, err
	}

	restaurant, err := s.restaurantRepo.GetByID(restaurantID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("fetching restaurant for table creation: %w", err)
	}

	table := models.RestaurantTable{
		RestaurantID: restaurantID,
		TableNumber:  req.TableNumber,
		TableName:    req.TableName,
		Capacity:     req.Capacity,
		Location:     req.Location,
		QRCode:       buildQRPayload(restaurant.RestaurantCode, req.TableNumber),
	}
	if _, err := s.tableRepo.Create(s.db, &table); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: table number '%s' already exists", ErrValidation, req.TableNumber)
		}
		return nil, fmt.Errorf("creating table: %w", err)
	}

	table.IsActive = true
	table.CurrentStatus = models.TableStatusAvailable
	return &table, nil
}

func (s *tableService) GetByID(actor *Actor, tableID int64) (*models.RestaurantTable, error) {
	table, err := s.tableRepo.GetByID(tableID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("getting table %d: %w", tableID, err)
	}
	if err := s.authz.RequireRestaurant(actor, table.RestaurantID); err != nil {
		return nil, err
	}
	return table, nil
}

func (s *tableService) List(actor *Actor, restaurantID int64, activeOnly bool, page, pageSize int) ([]models.RestaurantTable, int, error) {
	if err := s.authz.RequireRestaurant(actor, restaurantID); err != nil {
		return nil, 0, err
	}
	tables, total, err := s.tableRepo.ListByRestaurant(restaurantID, activeOnly, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("listing tables: %w", err)
	}
	return tables, total, nil
}

func (s *tableService) Update(actor *Actor, tableID int64, req UpdateTableRequest) (*models.RestaurantTable, error) {
	if err := s.authz.Require(actor, CapManageTables); err != nil {
		return nil, err
	}

	table, err := s.tableRepo.GetByID(tableID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("fetching table for update: %w", err)
	}
	if err := s.authz.RequireRestaurant(actor, table.RestaurantID); err != nil {
		return nil, err
	}

	if req.TableName != nil {
		table.TableName = req.TableName
	}
	if req.Capacity != nil {
		table.Capacity = *req.Capacity
	}
	if req.Location != nil {
		table.Location = req.Location
	}
	if req.IsActive != nil {
		table.IsActive = *req.IsActive
	}
	if req.CurrentStatus != nil {
		switch *req.CurrentStatus {
		case models.TableStatusAvailable, models.TableStatusOccupied, models.TableStatusReserved, models.TableStatusCleaning:
		default:
			return nil, fmt.Errorf("%w: unknown table status '%s'", ErrValidation, *req.CurrentStatus)
		}
		table.CurrentStatus = *req.CurrentStatus
	}

	if err := s.tableRepo.Update(s.db, table); err != nil {
		return nil, fmt.Errorf("updating table %d: %w", tableID, err)
	}
	return table, nil
}

func (s *tableService) Delete(actor *Actor, tableID int64) error {
	if err := s.authz.Require(actor, CapManageTables); err != nil {
		return err
	}

	table, err := s.tableRepo.GetByID(tableID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTableNotFound
		}
		return fmt.Errorf("fetching table for deletion: %w", err)
	}
	if err := s.authz.RequireRestaurant(actor, table.RestaurantID); err != nil {
		return err
	}

	openOrders, err := s.tableRepo.CountActiveOrders(tableID)
	if err != nil {
		return fmt.Errorf("checking open orders for table %d: %w", tableID, err)
	}
	if openOrders > 0 {
		return fmt.Errorf("%w: %d orders still open", ErrTableHasOpenOrders, openOrders)
	}

	if err := s.tableRepo.Delete(s.db, tableID); err != nil {
		return fmt.Errorf("deleting table %d: %w", tableID, err)
	}
	return nil
}

// RenderQRCode renders the table's QR payload as a PNG for printing.
func (s *tableService) RenderQRCode(actor *Actor, tableID int64, size int) ([]byte, error) {
	table, err := s.GetByID(actor, tableID)
	if err != nil {
		return nil, err
	}

	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(table.QRCode, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("rendering QR code for table %d: %w", tableID, err)
	}
	return png, nil
}

// ResolveQR resolves a scanned QR payload for the guest web client. Inactive
// tables and restaurants read as missing.
func (s *tableService) ResolveQR(qrCode string) (*models.RestaurantTable, *models.Restaurant, error) {
	table, err := s.tableRepo.GetByQRCode(qrCode)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, ErrTableNotFound
		}
		return nil, nil, fmt.Errorf("resolving QR code: %w", err)
	}
	if !table.IsActive {
		return nil, nil, ErrTableNotFound
	}

	restaurant, err := s.restaurantRepo.GetByID(table.RestaurantID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, ErrRestaurantNotFound
		}
		return nil, nil, fmt.Errorf("fetching restaurant for QR code: %w", err)
	}
	if !restaurant.IsActive() {
		return nil, nil, ErrRestaurantInactive
	}
	return table, restaurant, nil
}
