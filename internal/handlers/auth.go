package handlers

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/lokerhub/lokerhub-api/internal/models"
	"github.com/lokerhub/lokerhub-api/internal/services/referral"
	"github.com/lokerhub/lokerhub-api/internal/utils"
)

type AuthHandler struct {
	DB        *gorm.DB
	JWTSecret string
	Expires   int
	Referrals *referral.Processor
}

type RegisterReq struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Phone        string `json:"phone"`
	Role         string `json:"role"` // job_seeker / recruiter
	CompanyName  string `json:"company_name"`
	ReferralCode string `json:"referral_code"`
}

type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func validationFail(c *fiber.Ctx, errs FieldErrors) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": false,
		"message": "Validation error",
		"errors":  errs,
	})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid body",
		})
	}

	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	phone := strings.TrimSpace(req.Phone)
	password := strings.TrimSpace(req.Password)

	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = string(models.AccountJobSeeker)
	}

	errs := FieldErrors{}

	if name == "" {
		errs.Add("name", "Nama wajib diisi")
	}
	if email == "" {
		errs.Add("email", "Email wajib diisi")
	} else if !strings.Contains(email, "@") {
		errs.Add("email", "Format email tidak valid")
	}
	if password == "" {
		errs.Add("password", "Password wajib diisi")
	} else if len(password) < 6 {
		errs.Add("password", "Password minimal 6 karakter")
	}
	if phone != "" && len(phone) < 8 {
		errs.Add("phone", "No. HP tidak valid")
	}
	if role != string(models.AccountJobSeeker) && role != string(models.AccountRecruiter) {
		errs.Add("role", "Role tidak dikenal")
	}
	if role == string(models.AccountRecruiter) && strings.TrimSpace(req.CompanyName) == "" {
		errs.Add("company_name", "Nama perusahaan wajib diisi")
	}

	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	if taken, err := h.emailTaken(email); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Terjadi kesalahan server",
		})
	} else if taken {
		e := FieldErrors{}
		e.Add("email", "Email sudah terdaftar")
		return validationFail(c, e)
	}

	pw, err := utils.HashPassword(password)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Gagal memproses password",
		})
	}

	ref := models.AccountRef{Type: models.AccountType(role)}
	switch ref.Type {
	case models.AccountRecruiter:
		acc := models.Recruiter{
			Name:         name,
			Email:        email,
			Phone:        phone,
			Password:     pw,
			IsActive:     true,
			CompanyName:  strings.TrimSpace(req.CompanyName),
			ReferralCode: models.GenerateReferralCode(),
		}
		if err := h.DB.Create(&acc).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Gagal register",
			})
		}
		ref.ID = acc.ID
	default:
		acc := models.JobSeeker{
			Name:         name,
			Email:        email,
			Phone:        phone,
			Password:     pw,
			IsActive:     true,
			ReferralCode: models.GenerateReferralCode(),
		}
		if err := h.DB.Create(&acc).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Gagal register",
			})
		}
		ref.ID = acc.ID
	}

	// Kode referral opsional. Kalau tidak valid, registrasi tetap jalan.
	if code := strings.ToUpper(strings.TrimSpace(req.ReferralCode)); code != "" {
		if _, refErr := h.Referrals.ProcessReferral(c.Context(), code, ref); refErr != nil {
			log.Printf("referral for new account %s failed: %v", ref.ID, refErr)
		}
	}

	token, err := utils.SignJWT(h.JWTSecret, ref.ID.String(), role, h.Expires)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Gagal membuat token",
		})
	}

	setAuthCookie(c, token, h.Expires)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Register berhasil",
		"data": fiber.Map{
			"account": fiber.Map{
				"id":    ref.ID,
				"name":  name,
				"email": email,
				"role":  role,
			},
		},
	})
}

type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"success": false,
			"message": "Invalid body",
		})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := strings.TrimSpace(req.Password)

	errs := FieldErrors{}
	if email == "" {
		errs.Add("email", "Email wajib diisi")
	}
	if password == "" {
		errs.Add("password", "Password wajib diisi")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	id, role, hashed, active, err := h.findByEmail(email)
	if err != nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"success": false,
			"message": "Email atau password salah",
		})
	}

	if !active {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"success": false,
			"message": "Akun tidak aktif",
		})
	}

	if !utils.CheckPassword(hashed, password) {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"success": false,
			"message": "Email atau password salah",
		})
	}

	token, err := utils.SignJWT(h.JWTSecret, id, role, h.Expires)
	if err != nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"success": false,
			"message": "Gagal membuat token",
		})
	}

	setAuthCookie(c, token, h.Expires)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Login berhasil",
		"data": fiber.Map{
			"account": fiber.Map{
				"id":    id,
				"email": email,
				"role":  role,
			},
		},
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "lh_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   false,
		SameSite: "Lax",
	})

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logout berhasil",
	})
}

func (h *AuthHandler) emailTaken(email string) (bool, error) {
	var js models.JobSeeker
	err := h.DB.Where("email = ?", email).First(&js).Error
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	var rec models.Recruiter
	err = h.DB.Where("email = ?", email).First(&rec).Error
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	return false, nil
}

func (h *AuthHandler) findByEmail(email string) (id, role, hashed string, active bool, err error) {
	var js models.JobSeeker
	if err = h.DB.Where("email = ?", email).First(&js).Error; err == nil {
		return js.ID.String(), string(models.AccountJobSeeker), js.Password, js.IsActive, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", "", "", false, err
	}

	var rec models.Recruiter
	if err = h.DB.Where("email = ?", email).First(&rec).Error; err == nil {
		return rec.ID.String(), string(models.AccountRecruiter), rec.Password, rec.IsActive, nil
	}
	return "", "", "", false, err
}

func setAuthCookie(c *fiber.Ctx, token string, expiresMin int) {
	c.Cookie(&fiber.Cookie{
		Name:     "lh_token",
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   false,
		SameSite: "Lax",
		MaxAge:   expiresMin * 60,
	})
}
