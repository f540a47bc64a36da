package handler

// scanRequest is the payload both the device poller and the UI auto-submit.
type scanRequest struct {
	RFIDCode string `json:"rfid_code" validate:"required"`
}

type scanUserResponse struct {
	Name     string `json:"name"`
	Prodi    string `json:"prodi"`
	Semester int    `json:"semester"`
}

type scanAttendanceResponse struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Date      string `json:"date"`
}

type scanData struct {
	User       scanUserResponse       `json:"user"`
	Attendance scanAttendanceResponse `json:"attendance"`
}

type scanResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    scanData `json:"data"`
}

type modeResponse struct {
	Mode string `json:"mode"`
}

type setModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=registration check_in check_out"`
}

type setModeResponse struct {
	Success bool   `json:"success"`
	Mode    string `json:"mode"`
	Message string `json:"message"`
}
