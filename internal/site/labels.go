package site

import "github.com/mithrel/sheetsite/pkg/api"

// Fixed messages. These are shown as-is in both languages.
const (
	msgProductNotFound  = "Product Not Found."
	msgProductLoadError = "Failed to load product data."
	msgPageLoadError    = "Failed to load page data."
	msgNoImages         = "No images available."
	msgNoImage          = "No Image"
	msgNoResults        = "No results."
)

type labels struct {
	Catalog     string
	Packing     string
	Description string
	Code        string
	Search      string
	SearchHint  string
	ResultsFor  string
	Apply       string
	Address     string
	Phone       string
	Fax         string
	Email       string
	Map         string
	Contact     string
}

var labelsByLang = map[api.Lang]labels{
	api.LangZH: {
		Catalog:     "商品目錄",
		Packing:     "包裝規格",
		Description: "商品描述",
		Code:        "商品編號",
		Search:      "搜尋",
		SearchHint:  "搜尋商品",
		ResultsFor:  "搜尋結果",
		Apply:       "立即應徵",
		Address:     "地址",
		Phone:       "電話",
		Fax:         "傳真",
		Email:       "電子郵件",
		Map:         "查看地圖",
		Contact:     "聯絡我們",
	},
	api.LangEN: {
		Catalog:     "Product Catalog",
		Packing:     "Packing",
		Description: "Description",
		Code:        "Item Code",
		Search:      "Search",
		SearchHint:  "Search products",
		ResultsFor:  "Search results for",
		Apply:       "Apply",
		Address:     "Address",
		Phone:       "Phone",
		Fax:         "Fax",
		Email:       "Email",
		Map:         "View Map",
		Contact:     "Contact",
	},
}

func labelsFor(l api.Lang) labels {
	if lb, ok := labelsByLang[l]; ok {
		return lb
	}
	return labelsByLang[api.LangZH]
}
