// ABOUTME: Repository interfaces for restaurant storage
// ABOUTME: Enables testability and keeps callers off the concrete SQLite type

package storage

import "github.com/harper/matjip/internal/models"

// RestaurantRepository defines operations on the restaurant table.
type RestaurantRepository interface {
	CreateRestaurant(r *models.Restaurant) error
	GetRestaurant(id int64) (*models.Restaurant, error)
	ListRestaurants() ([]*models.Restaurant, error)
	UpdateRestaurant(r *models.Restaurant) error
	DeleteRestaurant(id int64) error
	SetFavorite(id int64, favorite bool) error
	ImportRestaurants(rs []*models.Restaurant) (int, error)
	Count() (int, error)
}

// Repository combines restaurant operations with lifecycle management.
type Repository interface {
	RestaurantRepository
	Close() error
	Reset() error
}
