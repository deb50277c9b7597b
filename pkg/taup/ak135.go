package taup

// Coarse ak135 travel-time grids, same layout as the iasp91 set. ak135 runs
// a fraction faster than iasp91 at teleseismic range.

var ak135Distances = []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
var ak135Depths = []float64{0, 100, 300, 700}

var ak135P = [][]float64{
	{0, 149.4, 270.9, 371.8, 457.4, 532.7, 599.9, 659.5, 711.9, 757.0, 794.9},
	{13.7, 136.6, 258.2, 359.4, 445.2, 520.7, 588.1, 647.9, 700.5, 745.8, 783.8},
	{37.3, 115.7, 237.1, 338.0, 423.7, 499.3, 566.7, 626.5, 679.3, 724.8, 763.0},
	{79.4, 76.8, 198.3, 299.3, 384.9, 460.3, 527.5, 587.3, 639.6, 684.7, 722.5},
}

var ak135S = [][]float64{
	{0, 269.9, 487.0, 668.9, 824.3, 961.7, 1081.6, 1188.8, 1282.8, 1363.7, 1433.0},
	{24.4, 246.2, 463.5, 645.4, 801.1, 938.6, 1058.7, 1166.0, 1260.1, 1341.1, 1410.5},
	{67.8, 209.4, 426.4, 608.3, 763.9, 901.3, 1021.4, 1128.7, 1222.8, 1303.8, 1373.2},
	{143.8, 139.9, 356.7, 538.5, 694.1, 831.4, 951.5, 1058.8, 1152.9, 1233.9, 1303.3},
}

var ak135Layers = []velocityLayer{
	{0, 5.80, 3.46},
	{20, 6.50, 3.85},
	{35, 8.04, 4.48},
	{120, 8.05, 4.50},
	{210, 8.72, 4.70},
	{410, 9.36, 5.08},
	{660, 10.79, 5.96},
}

func newAK135() *TableModel {
	return &TableModel{
		name: "ak135",
		phases: map[string]*phaseTable{
			"P": {distances: ak135Distances, depths: ak135Depths, times: ak135P},
			"S": {distances: ak135Distances, depths: ak135Depths, times: ak135S},
		},
		layers: ak135Layers,
	}
}
