package store

import "github.com/campusfees/fee-management-api/internal/models"

// SeedRoster is the well-known initial roster used by the seed endpoint and
// by deployments that run without a database.
func SeedRoster() []models.Student {
	return []models.Student{
		{ID: "1", RegNo: "21A21A05D3", Name: "Abhilash", Email: "akh@gmail.com", YearOfStudy: 4, Semester: 8, Department: "CSE", ContactNumber: "9986636322", Photo: "/assets/21A21A05D3.png"},
		{ID: "2", RegNo: "21A21A05D4", Name: "K Dedeepya", Email: "dedeepya@gmail.com", YearOfStudy: 4, Semester: 8, Department: "CSE", ContactNumber: "8536727326", Photo: "/assets/21A21A05D4.png"},
		{ID: "3", RegNo: "21A21A05D5", Name: "T Lahari", Email: "lahari@gmail.com", YearOfStudy: 4, Semester: 8, Department: "CSE", ContactNumber: "9355252662", Photo: "/assets/21A21A05D5.png"},
		{ID: "4", RegNo: "21A21A05D6", Name: "P Ramu", Email: "ramu@gmail.com", YearOfStudy: 4, Semester: 8, Department: "CSE", ContactNumber: "8363637377", Photo: "/assets/21A21A05D6.png"},
		{ID: "5", RegNo: "21A21A05D7", Name: "P Sowmya", Email: "sowmya@gmail.com", YearOfStudy: 4, Semester: 8, Department: "CSE", ContactNumber: "8363635552", Photo: "/assets/21A21A05D7.png"},
		{ID: "6", RegNo: "21A21A05D8", Name: "P Eswari", Email: "eswari@gmail.com", YearOfStudy: 4, Semester: 8, Department: "CSE", ContactNumber: "8363938373", Photo: "/assets/21A21A05D8.png"},
		{ID: "7", RegNo: "21A21A05D9", Name: "P Mohan Kumar", Email: "mohankumar@gmail.com", YearOfStudy: 4, Semester: 8, Department: "CSE", ContactNumber: "9663535252", Photo: "/assets/21A21A05D9.png"},
		{ID: "8", RegNo: "21A21A05E0", Name: "P Raja Sekhar", Email: "sekhar@gmail.com", YearOfStudy: 4, Semester: 8, Department: "CSE", ContactNumber: "97542562782", Photo: "/assets/21A21A05E0.png"},
		{ID: "9", RegNo: "21A21A05E1", Name: "P Hemani", Email: "hemani@gmail.com", YearOfStudy: 4, Semester: 8, Department: "CSE", ContactNumber: "86522672888", Photo: "/assets/21A21A05E1.png"},
	}
}
