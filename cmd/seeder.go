package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm connection: %v", err)
		}

		if clearData {
			for _, table := range []string{
				"despesas", "adiantamentos", "viagem_participantes", "viagens",
				"perfil_departamentos", "perfis", "departamentos", "users",
			} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("senha123"), cfg.Security.BCryptCost)

		seedUser := func(username, firstName, lastName string, superuser bool) int64 {
			var id int64
			row := db.Raw("SELECT id FROM users WHERE username = ?", username).Row()
			if err := row.Scan(&id); err == nil {
				fmt.Printf("user %s already exists\n", username)
				return id
			}
			err := db.Raw(`
				INSERT INTO users (username, email, first_name, last_name, password_hash, is_superuser, is_active, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, true, now(), now()) RETURNING id`,
				username, username, firstName, lastName, string(hash), superuser).Row().Scan(&id)
			if err != nil {
				log.Fatalf("failed to insert user %s: %v", username, err)
			}
			fmt.Println("Seeded user:", username)
			return id
		}

		seedProfile := func(userID int64, role string) int64 {
			var id int64
			row := db.Raw("SELECT id FROM perfis WHERE usuario_id = ?", userID).Row()
			if err := row.Scan(&id); err == nil {
				return id
			}
			err := db.Raw("INSERT INTO perfis (usuario_id, tipo) VALUES (?, ?) RETURNING id", userID, role).Row().Scan(&id)
			if err != nil {
				log.Fatalf("failed to insert profile for user %d: %v", userID, err)
			}
			return id
		}

		seedUser("admin@empresa.com", "Admin", "Sistema", true)
		directorID := seedUser("diretor@empresa.com", "Carlos", "Mendes", false)
		managerID := seedUser("gestor@empresa.com", "Beatriz", "Souza", false)
		collaboratorID := seedUser("colaborador@empresa.com", "Ana", "Lima", false)

		seedProfile(directorID, "DIRETOR")
		managerProfileID := seedProfile(managerID, "GESTOR")
		collaboratorProfileID := seedProfile(collaboratorID, "COLABORADOR")

		var deptID int64
		row := db.Raw("SELECT id FROM departamentos WHERE nome = ?", "Comercial").Row()
		if err := row.Scan(&deptID); err != nil {
			err := db.Raw("INSERT INTO departamentos (nome, gestor_id) VALUES (?, ?) RETURNING id", "Comercial", managerID).Row().Scan(&deptID)
			if err != nil {
				log.Fatalf("failed to insert department: %v", err)
			}
			fmt.Println("Seeded department: Comercial")
		}

		for _, profileID := range []int64{managerProfileID, collaboratorProfileID} {
			var one int
			row := db.Raw("SELECT 1 FROM perfil_departamentos WHERE perfil_id = ? AND departamento_id = ?", profileID, deptID).Row()
			if err := row.Scan(&one); err != nil {
				if err := db.Exec("INSERT INTO perfil_departamentos (perfil_id, departamento_id) VALUES (?, ?)", profileID, deptID).Error; err != nil {
					log.Fatalf("failed to link profile %d to department: %v", profileID, err)
				}
			}
		}

		var tripID int64
		row = db.Raw("SELECT id FROM viagens WHERE titulo = ?", "Visita clientes SP").Row()
		if err := row.Scan(&tripID); err != nil {
			start := time.Now().AddDate(0, 0, -2).Format("2006-01-02")
			end := time.Now().AddDate(0, 0, 5).Format("2006-01-02")
			err := db.Raw(`
				INSERT INTO viagens (titulo, data_inicio, data_fim, status, created_at, updated_at)
				VALUES (?, ?, ?, 'ATIVA', now(), now()) RETURNING id`,
				"Visita clientes SP", start, end).Row().Scan(&tripID)
			if err != nil {
				log.Fatalf("failed to insert trip: %v", err)
			}
			if err := db.Exec("INSERT INTO viagem_participantes (viagem_id, usuario_id) VALUES (?, ?)", tripID, collaboratorID).Error; err != nil {
				log.Fatalf("failed to add trip participant: %v", err)
			}
			if err := db.Exec(`
				INSERT INTO adiantamentos (viagem_id, usuario_id, valor, data_adiantamento, created_at, updated_at)
				VALUES (?, ?, 150000, now(), now(), now())`, tripID, collaboratorID).Error; err != nil {
				log.Fatalf("failed to insert advance: %v", err)
			}
			fmt.Println("Seeded trip: Visita clientes SP")
		}

		fmt.Println("Seeding complete. Default password: senha123")
	},
}
