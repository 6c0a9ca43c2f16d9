package v1

import "github.com/shenikar/emergency_dispatch/internal/models"

// DTOToSOSReport преобразует DTO SOS в доменную модель. Координаты уже проверены валидатором.
func DTOToSOSReport(dto SOSRequest) models.SOSReport {
	return models.SOSReport{
		Type:     models.IncidentType(dto.Type),
		Location: models.Point{Lon: *dto.Longitude, Lat: *dto.Latitude},
	}
}

// ModelToVehicleResponse преобразует машину в DTO
func ModelToVehicleResponse(model *models.Vehicle) *VehicleResponse {
	if model == nil {
		return nil
	}
	return &VehicleResponse{
		ID:                 model.ID,
		Code:               model.Code,
		Type:               string(model.Type),
		Status:             string(model.Status),
		Latitude:           model.CurrentLocation.Lat,
		Longitude:          model.CurrentLocation.Lon,
		BaseLocation:       model.BaseLocation,
		DriverName:         model.DriverName,
		AssignedIncidentID: model.AssignedIncidentID,
		UpdatedAt:          model.UpdatedAt,
	}
}

// ModelsToVehicleResponses преобразует слайс машин в слайс DTO
func ModelsToVehicleResponses(vehicles []*models.Vehicle) []*VehicleResponse {
	responses := make([]*VehicleResponse, len(vehicles))
	for i, v := range vehicles {
		responses[i] = ModelToVehicleResponse(v)
	}
	return responses
}

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	resp := &IncidentResponse{
		ID:              model.ID,
		Type:            string(model.Type),
		Latitude:        model.Location.Lat,
		Longitude:       model.Location.Lon,
		SeverityScore:   model.SeverityScore,
		Status:          string(model.Status),
		AssignedVehicle: ModelToVehicleResponse(model.AssignedVehicle),
		InitialETA:      model.InitialETA,
		DispatchedAt:    model.DispatchedAt,
		ArrivedAt:       model.ArrivedAt,
		CompletedAt:     model.CompletedAt,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
	if h := model.SuggestedHospital; h != nil {
		resp.SuggestedHospital = &HospitalResponse{Name: h.Name, Latitude: h.Location.Lat, Longitude: h.Location.Lon}
	}
	return resp
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(incidents []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(incidents))
	for i, model := range incidents {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}

func ModelToTrackingResponse(model *models.Tracking) *TrackingResponse {
	resp := &TrackingResponse{
		IncidentID:   model.IncidentID,
		Status:       string(model.Status),
		VehicleCode:  model.VehicleCode,
		RemainingETA: model.RemainingETA,
		Progress:     model.Progress,
	}
	if p := model.VehicleLocation; p != nil {
		resp.Latitude, resp.Longitude = &p.Lat, &p.Lon
	}
	return resp
}

func ModelsToHospitalResponses(hospitals []*models.Hospital) []*HospitalResponse {
	responses := make([]*HospitalResponse, len(hospitals))
	for i, h := range hospitals {
		responses[i] = &HospitalResponse{Name: h.Name, Latitude: h.Location.Lat, Longitude: h.Location.Lon}
	}
	return responses
}

func ModelToFeedbackResponse(model *models.Feedback) *FeedbackResponse {
	return &FeedbackResponse{
		ID:          model.ID,
		IncidentID:  model.IncidentID,
		Rating:      model.Rating,
		Comments:    model.Comments,
		SubmittedAt: model.SubmittedAt,
	}
}

func ModelsToFeedbackResponses(list []*models.Feedback) []*FeedbackResponse {
	responses := make([]*FeedbackResponse, len(list))
	for i, f := range list {
		responses[i] = ModelToFeedbackResponse(f)
	}
	return responses
}
