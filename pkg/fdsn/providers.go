package fdsn

// Known FDSN data centers, keyed by the provider names used in station and
// event metadata. ETHZ station metadata maps onto the ETH web-service host.
var providerEndpoints = map[string]string{
	"IRIS":       "https://service.iris.edu",
	"GEOFON":     "https://geofon.gfz-potsdam.de",
	"ORFEUS":     "https://www.orfeus-eu.org",
	"RESIF":      "https://ws.resif.fr",
	"INGV":       "https://webservices.ingv.it",
	"ETHZ":       "https://eida.ethz.ch",
	"ETH":        "https://eida.ethz.ch",
	"NCEDC":      "https://service.ncedc.org",
	"SCEDC":      "https://service.scedc.caltech.edu",
	"USGS":       "https://earthquake.usgs.gov",
	"BGR":        "https://eida.bgr.de",
	"AUSPASS":    "https://auspass.edu.au:8080",
	"ICGC":       "https://ws.icgc.cat",
	"UIB-NORSAR": "https://eida.geo.uib.no",
	"IPGP":       "https://ws.ipgp.fr",
	"LMU":        "https://erde.geophysik.uni-muenchen.de",
	"KOERI":      "https://eida.koeri.boun.edu.tr",
	"KNMI":       "https://rdsa.knmi.nl",
	"NOA":        "https://eida.gein.noa.gr",
	"GEONET":     "https://service.geonet.org.nz",
	"ISC":        "https://www.isc.ac.uk",
}

// Endpoint resolves a provider name to its web-service base URL.
func Endpoint(provider string) (string, bool) {
	url, ok := providerEndpoints[provider]
	return url, ok
}

// Providers returns the names of all known providers.
func Providers() []string {
	names := make([]string, 0, len(providerEndpoints))
	for name := range providerEndpoints {
		names = append(names, name)
	}
	return names
}
