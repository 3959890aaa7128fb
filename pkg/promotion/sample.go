package promotion

import "github.com/shouni/gemini-promo-kit/pkg/domain"

const (
	SamplePlndpNo     = "1958"
	SampleCountryCode = "USA"
)

func unsplash(id, size string) string {
	return "https://images.unsplash.com/photo-" + id + "?" + size + "&fit=crop"
}

// SamplePromotion は USA 向けブラックフライデー企画のサンプルデータです。
func SamplePromotion() *domain.Promotion {
	const item = "w=400&h=400"
	return &domain.Promotion{
		PlndpNo:            SamplePlndpNo,
		CountryCode:        SampleCountryCode,
		Title:              "BLACK FRIDAY MEGA SALE",
		Description:        "Our biggest sale of the year is here! Get up to 50% off on your favorite beauty and skincare products.",
		Theme:              "Black Friday",
		HeroBannerImageURL: unsplash("1607082349566-187342175e2f", "w=1200&h=600"),
		DetailImageURLs: []string{
			unsplash("1607082349566-187342175e2f", "w=800&h=2000"),
			unsplash("1596462502278-27bfdc403348", "w=800&h=2000"),
			unsplash("1612817288484-6f916006741a", "w=800&h=2000"),
		},
		Products: &domain.ProductSet{Items: []domain.Product{
			{ID: "P001", Name: "Premium Hydrating Serum", Price: 49.99, DiscountPrice: 24.99, ImageURL: unsplash("1556228578-0d85b1a4d571", item), Brand: "Beauty Co", Category: "Skincare"},
			{ID: "P002", Name: "Anti-Aging Night Cream", Price: 79.99, DiscountPrice: 39.99, ImageURL: unsplash("1571875257727-256c39da42af", item), Brand: "Glow Lab", Category: "Skincare"},
			{ID: "P003", Name: "Vitamin C Brightening Essence", Price: 59.99, DiscountPrice: 29.99, ImageURL: unsplash("1612817288484-6f916006741a", item), Brand: "Radiant Skin", Category: "Skincare"},
			{ID: "P004", Name: "Gentle Cleansing Foam", Price: 32.99, DiscountPrice: 16.49, ImageURL: unsplash("1556228720-195a672e8a03", item), Brand: "Pure Beauty", Category: "Skincare"},
			{ID: "P005", Name: "Intensive Eye Cream", Price: 45.99, DiscountPrice: 22.99, ImageURL: unsplash("1612817288484-6f916006741a", item), Brand: "Youthful Glow", Category: "Skincare"},
			{ID: "P006", Name: "SPF 50 Sunscreen", Price: 38.99, DiscountPrice: 19.49, ImageURL: unsplash("1556228578-0d85b1a4d571", item), Brand: "Sun Shield", Category: "Skincare"},
			{ID: "P007", Name: "Sheet Mask 5-Pack", Price: 24.99, DiscountPrice: 12.49, ImageURL: unsplash("1571875257727-256c39da42af", item), Brand: "Hydration Plus", Category: "Skincare"},
			{ID: "P008", Name: "Overnight Repair Mask", Price: 54.99, DiscountPrice: 27.49, ImageURL: unsplash("1556228720-195a672e8a03", item), Brand: "Restore Beauty", Category: "Skincare"},
		}},
		TrendKeywords: []string{"black friday", "sale", "beauty", "skincare", "discount"},
	}
}
