package scenario

// Cumulative rise in millimeters from the baseline year, one value per
// simulated year. The stability series bracket the RCP2.6 run for
// sensitivity checks.
var (
	seriesRCP26 = []float64{
		3.4734, 6.9468, 10.4202, 13.8936, 17.367, 20.8404, 24.3138, 27.7872,
		31.2606, 34.734, 38.2074, 47.559, 51.52225, 55.4855, 59.44875, 63.412,
		67.37525, 71.3385, 75.30175, 79.265, 83.22825, 87.1915, 91.15475, 95.118,
		99.08125, 103.0445, 107.00775, 110.971, 114.93425, 118.8975, 122.86075, 132.624,
		136.7685, 140.913, 145.0575, 149.202, 153.3465, 157.491, 161.6355, 165.78,
		169.9245, 174.069, 178.2135, 182.358, 186.5025, 190.647, 194.7915, 198.936,
		203.0805, 207.225, 211.3695, 215.514, 219.6585, 223.803, 227.9475, 232.092,
		236.2365, 240.381, 244.5255, 248.67, 252.8145, 256.959, 261.1035, 265.248,
		269.3925, 273.537, 277.6815, 281.826, 285.9705, 290.115, 294.2595,
	}
	seriesRCP45 = []float64{
		8.0706, 12.1059, 16.1412, 20.1765, 24.2118, 28.2471, 32.2824, 36.3177,
		40.353, 44.3883, 55.611, 60.24525, 64.8795, 69.51375, 74.148, 78.78225,
		83.4165, 88.05075, 92.685, 97.31925, 101.9535, 106.58775, 111.222, 115.85625,
		120.4905, 125.12475, 129.759, 134.39325, 139.0275, 143.66175, 156.608, 161.502,
		166.396, 171.29, 176.184, 181.078, 185.972, 190.866, 195.76, 200.654,
		205.548, 210.442, 215.336, 220.23, 225.124, 230.018, 234.912, 239.806,
		244.7, 249.594, 254.488, 259.382, 264.276, 269.17, 274.064, 278.958,
		283.852, 288.746, 293.64, 298.534, 303.428, 308.322, 313.216, 318.11,
		323.004, 327.898, 332.792, 337.686, 342.58, 347.474,
	}
	seriesRCP85 = []float64{
		9.5984, 14.3976, 19.1968, 23.996, 28.7952, 33.5944, 38.3936, 43.1928,
		47.992, 52.7912, 73.53, 79.6575, 85.785, 91.9125, 98.04, 104.1675,
		110.295, 116.4225, 122.55, 128.6775, 134.805, 140.9325, 147.06, 153.1875,
		159.315, 165.4425, 171.57, 177.6975, 183.825, 189.9525, 244.032, 251.658,
		259.284, 266.91, 274.536, 282.162, 289.788, 297.414, 305.04, 312.666,
		320.292, 327.918, 335.544, 343.17, 350.796, 358.422, 366.048, 373.674,
		381.3, 388.926, 396.552, 404.178, 411.804, 419.43, 427.056, 434.682,
		442.308, 449.934, 457.56, 465.186, 472.812, 480.438, 488.064, 495.69,
		503.316, 510.942, 518.568, 526.194, 533.82, 541.446,
	}
	seriesStabilityLow = []float64{
		2.7, 5.4, 8.1, 10.8, 13.5, 16.2, 18.9, 21.6,
		24.3, 27, 29.7, 36, 39, 42, 45, 48,
		51, 54, 57, 60, 63, 66, 69, 72,
		75, 78, 81, 84, 87, 90, 93, 96,
		99, 102, 105, 108, 111, 114, 117, 120,
		123, 126, 129, 132, 135, 138, 141, 144,
		147, 150, 153, 156, 159, 162, 165, 168,
		171, 174, 177, 180, 183, 186, 189, 192,
		195, 198, 201, 204, 207, 210, 213,
	}
	seriesStabilityHigh = []float64{
		6.4, 12.8, 19.2, 25.6, 32, 38.4, 44.8, 51.2,
		57.6, 64, 70.4, 138, 149.5, 161, 172.5, 184,
		195.5, 207, 218.5, 230, 241.5, 253, 264.5, 276,
		287.5, 299, 310.5, 322, 333.5, 345, 356.5, 600,
		618.75, 637.5, 656.25, 675, 693.75, 712.5, 731.25, 750,
		768.75, 787.5, 806.25, 825, 843.75, 862.5, 881.25, 900,
		918.75, 937.5, 956.25, 975, 993.75, 1012.5, 1031.25, 1050,
		1068.75, 1087.5, 1106.25, 1125, 1143.75, 1162.5, 1181.25, 1200,
		1218.75, 1237.5, 1256.25, 1275, 1293.75, 1312.5, 1331.25,
	}
)
