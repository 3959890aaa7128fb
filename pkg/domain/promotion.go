package domain

import "time"

// Product はプロモーションに掲載される商品です。
type Product struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	DiscountPrice float64 `json:"discount_price"`
	ImageURL      string  `json:"image_url"`
	Brand         string  `json:"brand"`
	Category      string  `json:"category"`
}

// ProductSet は products カラムに保存される商品リストです。
type ProductSet struct {
	Items []Product `json:"items"`
}

// Promotion は国別の企画展 (plndp) を表します。
type Promotion struct {
	ID                 int64       `json:"id" gorm:"primaryKey"`
	PlndpNo            string      `json:"plndp_no" gorm:"size:50;not null;index"`
	CountryCode        string      `json:"country_code" gorm:"size:10;not null;index"`
	Title              string      `json:"title" gorm:"size:200;not null"`
	Description        string      `json:"description"`
	Theme              string      `json:"theme"`
	HeroBannerImageURL string      `json:"hero_banner_image_url" gorm:"size:500;not null"`
	DetailImageURLs    []string    `json:"detail_image_urls" gorm:"serializer:json"`
	Products           *ProductSet `json:"products" gorm:"serializer:json"`
	TrendKeywords      []string    `json:"trend_keywords" gorm:"serializer:json"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// PromotionRequest は POST /generate-promotion のボディです。
type PromotionRequest struct {
	CountryCode string `json:"country_code" validate:"required,alpha,min=2,max=3"`
	Category    string `json:"category" validate:"required"`
}
