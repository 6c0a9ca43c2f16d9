// Package seed содержит стартовый парк машин и справочник больниц региона.
package seed

import "github.com/shenikar/emergency_dispatch/internal/models"

// Vehicles возвращает стартовый парк; все машины свободны
func Vehicles() []*models.Vehicle {
	return []*models.Vehicle{
		{
			Code:            "A001",
			Type:            models.VehicleAmbulance,
			Status:          models.VehicleAvailable,
			CurrentLocation: models.Point{Lon: 77.7120, Lat: 8.7305},
			BaseLocation:    "Town Ambulance Depot",
			DriverName:      "Murugan",
			ContactNumber:   "+910000000001",
		},
		{
			Code:            "P101",
			Type:            models.VehiclePolice,
			Status:          models.VehicleAvailable,
			CurrentLocation: models.Point{Lon: 77.7450, Lat: 8.7410},
			BaseLocation:    "Palayamkottai Police Station",
			DriverName:      "Selvam",
			ContactNumber:   "+910000000002",
		},
		{
			Code:            "F501",
			Type:            models.VehicleFireService,
			Status:          models.VehicleAvailable,
			CurrentLocation: models.Point{Lon: 77.7050, Lat: 8.7050},
			BaseLocation:    "Fire and Rescue Station",
			DriverName:      "Karthik",
			ContactNumber:   "+910000000003",
		},
	}
}

// Hospitals возвращает справочник больниц
func Hospitals() []*models.Hospital {
	return []*models.Hospital{
		{Name: "Tirunelveli Medical College Hospital", Location: models.Point{Lon: 77.7427, Lat: 8.7163}},
		{Name: "Palayamkottai Government Hospital", Location: models.Point{Lon: 77.7356, Lat: 8.7232}},
		{Name: "Junction Multispeciality Hospital", Location: models.Point{Lon: 77.7045, Lat: 8.7302}},
	}
}
