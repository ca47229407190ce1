package constants

// Instructors lists the instructor roster in display order.
var Instructors = []string{
	"IZQUIERDO",
	"DRIS",
	"RODRIGUEZ",
	"PRIETO",
	"BENJUMEA",
	"SORIANO",
	"DUEÑAS",
}

// Students lists the student roster in the order the course tracker shows them.
var Students = []string{
	"CUADRADO",
	"DE LAS MORAS",
	"M.PEREZ",
	"GUERRERO",
	"TRUJILLO",
	"ESPINOSA",
	"CARRILLO",
	"COMPTE",
	"S.ALONSO",
	"GAYO",
	"MELLADO",
	"EXPOSITO",
	"PACHON",
}

// AircraftRegistrations are the training helicopters of the school.
var AircraftRegistrations = []string{
	"ET-180", "ET-181", "ET-182", "ET-183", "ET-184", "ET-185", "ET-186",
	"ET-187", "ET-188", "ET-189", "ET-190", "ET-191", "ET-192", "ET-193",
}

// SimulatorRegistrations are registrations that always log as simulator time.
var SimulatorRegistrations = []string{"ET-105", "ET-106"}

// ApproachTypes are the instrument approach types the logbook recognises.
var ApproachTypes = []string{"ILS", "VOR", "NDB", "RNP", "LOC", "PAR", "TACAN", "NMS", "SID", "STAR"}
