package main

import (
	"fmt"
	"log"
	"os"

	"github.com/Suryathangaraj2003/consulting/internal/config"
	"github.com/Suryathangaraj2003/consulting/internal/models"
	"github.com/Suryathangaraj2003/consulting/internal/storage"
	"github.com/joho/godotenv"
	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	s := storage.NewService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: seed, complete-appointment <id>, deactivate-user <id>")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "seed":
		if err := seedTestAccounts(s); err != nil {
			log.Fatalf("Error seeding test accounts: %v", err)
		}
	case "complete-appointment":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin complete-appointment <appointment_id>")
			os.Exit(1)
		}
		if err := completeAppointment(s, os.Args[2]); err != nil {
			log.Fatalf("Error completing appointment: %v", err)
		}
		fmt.Printf("Appointment %s marked completed.\n", os.Args[2])
	case "deactivate-user":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin deactivate-user <user_id>")
			os.Exit(1)
		}
		if err := deactivateUser(s, os.Args[2]); err != nil {
			log.Fatalf("Error deactivating user: %v", err)
		}
		fmt.Printf("User %s has been deactivated.\n", os.Args[2])
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

// seedTestAccounts creates the demo client and counselor used by manual
// testing. Existing accounts are left untouched.
func seedTestAccounts(s storage.Storage) error {
	if existing, _ := s.GetUserByEmail("client@test.com", models.UserTypeClient); existing == nil {
		client := models.User{
			FirstName: "John",
			LastName:  "Doe",
			Email:     "client@test.com",
			Phone:     "1234567890",
			UserType:  models.UserTypeClient,
		}
		if err := client.SetPassword("123456"); err != nil {
			return err
		}
		if err := s.SaveUser(&client); err != nil {
			return err
		}
		fmt.Println("Created test client: client@test.com / 123456")
	} else {
		fmt.Println("Test client already exists: client@test.com")
	}

	if existing, _ := s.GetUserByEmail("counselor@test.com", models.UserTypeCounselor); existing == nil {
		counselor := models.User{
			FirstName:      "Sarah",
			LastName:       "Smith",
			Email:          "counselor@test.com",
			Phone:          "1234567891",
			UserType:       models.UserTypeCounselor,
			LicenseNumber:  "LIC001",
			Specialization: "mental-health",
			Experience:     "5 years",
			Bio:            "Experienced mental health counselor",
			HourlyRate:     100,
			Availability:   pq.StringArray{"Mon 09:00-17:00", "Wed 09:00-17:00", "Fri 09:00-13:00"},
			Rating:         4.8,
			TotalSessions:  50,
		}
		if err := counselor.SetPassword("123456"); err != nil {
			return err
		}
		if err := s.SaveUser(&counselor); err != nil {
			return err
		}
		fmt.Println("Created test counselor: counselor@test.com / 123456")
	} else {
		fmt.Println("Test counselor already exists: counselor@test.com")
	}

	return nil
}

func completeAppointment(s storage.Storage, id string) error {
	appt, err := s.GetAppointmentByID(id)
	if err != nil {
		return err
	}
	appt.Status = models.StatusCompleted
	return s.SaveAppointment(appt)
}

func deactivateUser(s storage.Storage, id string) error {
	user, err := s.GetUserByID(id)
	if err != nil {
		return err
	}
	user.IsActive = false
	return s.SaveUser(user)
}
